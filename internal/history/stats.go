package history

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"strconv"
	"time"
)

// Stats aggregates the journal of one field
type Stats struct {
	Document      string      `json:"document"`
	Field         string      `json:"field"`
	TotalUpdates  int         `json:"totalUpdates"`
	SuccessCount  int         `json:"successCount"`
	ErrorCount    int         `json:"errorCount"`
	NetworkErrors int         `json:"networkErrors"` // no reply at all (status 0)
	AvgDurationMs float64     `json:"avgDurationMs"`
	MinDurationMs int64       `json:"minDurationMs"`
	MaxDurationMs int64       `json:"maxDurationMs"`
	TotalReqSize  int64       `json:"totalRequestSize"`
	TotalRespSize int64       `json:"totalResponseSize"`
	StatusCodes   map[int]int `json:"statusCodes"`
	LastUpdated   time.Time   `json:"lastUpdated"`
}

// SuccessRate returns the share of successful updates in percent
func (s Stats) SuccessRate() float64 {
	if s.TotalUpdates == 0 {
		return 0
	}
	return float64(s.SuccessCount) * 100 / float64(s.TotalUpdates)
}

// StatsPerField returns one Stats per document and field, most recently
// updated first. An empty document covers every document.
func (m *Manager) StatsPerField(document string) ([]Stats, error) {
	if cached, ok := m.cache.get(document); ok {
		return cached, nil
	}

	query := `
		WITH status_codes_agg AS (
			SELECT
				document,
				field,
				json_group_object(CAST(status AS TEXT), count) as status_codes_json
			FROM (
				SELECT document, field, status, COUNT(*) as count
				FROM journal
				WHERE ? = '' OR document = ?
				GROUP BY document, field, status
			)
			GROUP BY document, field
		)
		SELECT
			j.document,
			j.field,
			COUNT(*) as total_updates,
			SUM(CASE WHEN COALESCE(j.error, '') = '' AND j.status >= 200 AND j.status < 300 THEN 1 ELSE 0 END) as success_count,
			SUM(CASE WHEN COALESCE(j.error, '') != '' OR j.status < 200 OR j.status >= 300 THEN 1 ELSE 0 END) as error_count,
			SUM(CASE WHEN j.status = 0 THEN 1 ELSE 0 END) as network_errors,
			COALESCE(AVG(j.duration_ms), 0) as avg_duration,
			COALESCE(MIN(j.duration_ms), 0) as min_duration,
			COALESCE(MAX(j.duration_ms), 0) as max_duration,
			COALESCE(SUM(j.request_size), 0) as total_req_size,
			COALESCE(SUM(j.response_size), 0) as total_resp_size,
			MAX(j.timestamp) as last_updated,
			COALESCE(s.status_codes_json, '{}') as status_codes_json
		FROM journal j
		LEFT JOIN status_codes_agg s ON j.document = s.document AND j.field = s.field
		WHERE ? = '' OR j.document = ?
		GROUP BY j.document, j.field
		ORDER BY last_updated DESC, j.field
	`

	rows, err := m.db.Query(query, document, document, document, document)
	if err != nil {
		return nil, fmt.Errorf("failed to get stats per field: %w", err)
	}
	defer rows.Close()

	var statsList []Stats
	for rows.Next() {
		s, err := scanStats(rows)
		if err != nil {
			return nil, err
		}
		statsList = append(statsList, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	m.cache.set(document, statsList)
	return statsList, nil
}

func scanStats(rows *sql.Rows) (Stats, error) {
	var s Stats
	var lastUpdated sql.NullString
	var statusCodesJSON string

	err := rows.Scan(
		&s.Document,
		&s.Field,
		&s.TotalUpdates,
		&s.SuccessCount,
		&s.ErrorCount,
		&s.NetworkErrors,
		&s.AvgDurationMs,
		&s.MinDurationMs,
		&s.MaxDurationMs,
		&s.TotalReqSize,
		&s.TotalRespSize,
		&lastUpdated,
		&statusCodesJSON,
	)
	if err != nil {
		return s, fmt.Errorf("failed to scan stats: %w", err)
	}

	if lastUpdated.Valid {
		s.LastUpdated, err = time.Parse(timestampLayout, lastUpdated.String)
		if err != nil {
			return s, fmt.Errorf("invalid timestamp %q: %w", lastUpdated.String, err)
		}
	}

	s.StatusCodes = make(map[int]int)
	var codes map[string]int
	if err := json.Unmarshal([]byte(statusCodesJSON), &codes); err != nil {
		return s, fmt.Errorf("failed to unmarshal status codes: %w", err)
	}
	for codeStr, count := range codes {
		if code, err := strconv.Atoi(codeStr); err == nil {
			s.StatusCodes[code] = count
		}
	}
	return s, nil
}
