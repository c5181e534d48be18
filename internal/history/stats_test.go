package history

import (
	"testing"
	"time"

	"github.com/studiowebux/inplace/internal/types"
)

func TestManager_StatsPerField(t *testing.T) {
	m := newTestManager(t)
	rec := m.For("users.html")

	results := []struct {
		attr string
		res  *types.UpdateResult
	}{
		{"name", &types.UpdateResult{Status: 200, Duration: 10, RequestSize: 40, ResponseSize: 20}},
		{"name", &types.UpdateResult{Status: 204, Duration: 30, RequestSize: 40}},
		{"name", &types.UpdateResult{Status: 422, Duration: 20, Error: "update rejected"}},
		{"city", &types.UpdateResult{Error: "connection refused"}},
	}
	for i, r := range results {
		if err := rec.Record(req("", r.attr, "v"), r.res); err != nil {
			t.Fatalf("Record %d failed: %v", i, err)
		}
	}
	if err := m.For("other.html").Record(req("", "name", "x"), &types.UpdateResult{Status: 200}); err != nil {
		t.Fatal(err)
	}

	stats, err := m.StatsPerField("users.html")
	if err != nil {
		t.Fatalf("StatsPerField failed: %v", err)
	}
	if len(stats) != 2 {
		t.Fatalf("Expected 2 fields, got %d", len(stats))
	}

	// city was written last
	city, name := stats[0], stats[1]
	if city.Field != "user[city]" || city.NetworkErrors != 1 || city.ErrorCount != 1 {
		t.Errorf("Unexpected city stats %+v", city)
	}

	if name.TotalUpdates != 3 || name.SuccessCount != 2 || name.ErrorCount != 1 {
		t.Errorf("Unexpected name counts %+v", name)
	}
	if name.AvgDurationMs != 20 || name.MinDurationMs != 10 || name.MaxDurationMs != 30 {
		t.Errorf("Unexpected name durations %+v", name)
	}
	if name.TotalReqSize != 80 || name.TotalRespSize != 20 {
		t.Errorf("Unexpected name sizes %+v", name)
	}
	if name.StatusCodes[200] != 1 || name.StatusCodes[204] != 1 || name.StatusCodes[422] != 1 {
		t.Errorf("Unexpected status codes %v", name.StatusCodes)
	}
	if rate := name.SuccessRate(); rate < 66 || rate > 67 {
		t.Errorf("Unexpected success rate %f", rate)
	}
	if name.LastUpdated.IsZero() {
		t.Error("Expected last update time")
	}

	all, err := m.StatsPerField("")
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 3 {
		t.Errorf("Expected 3 document fields, got %d", len(all))
	}
}

func TestManager_StatsCacheInvalidation(t *testing.T) {
	m := newTestManager(t)
	rec := m.For("users.html")

	if err := rec.Record(req("", "name", "a"), &types.UpdateResult{Status: 200}); err != nil {
		t.Fatal(err)
	}
	first, err := m.StatsPerField("users.html")
	if err != nil {
		t.Fatal(err)
	}
	if first[0].TotalUpdates != 1 {
		t.Fatalf("Expected 1 update, got %d", first[0].TotalUpdates)
	}

	if err := rec.Record(req("", "name", "b"), &types.UpdateResult{Status: 200}); err != nil {
		t.Fatal(err)
	}
	second, _ := m.StatsPerField("users.html")
	if second[0].TotalUpdates != 2 {
		t.Errorf("Expected cache to be invalidated by Record, got %d", second[0].TotalUpdates)
	}

	if err := m.Clear(); err != nil {
		t.Fatal(err)
	}
	cleared, _ := m.StatsPerField("users.html")
	if len(cleared) != 0 {
		t.Errorf("Expected no stats after Clear, got %d", len(cleared))
	}
}

func TestStatsCache_Expires(t *testing.T) {
	c := newStatsCache(time.Minute)
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }

	c.set("doc", []Stats{{Field: "user[name]"}})
	if _, ok := c.get("doc"); !ok {
		t.Error("Expected fresh entry")
	}

	now = now.Add(2 * time.Minute)
	if _, ok := c.get("doc"); ok {
		t.Error("Expected expired entry")
	}
}
