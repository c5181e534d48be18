/*
Package types defines core data structures shared across inplace.

# Overview

The types package provides shared type definitions for:
  - Field kinds understood by the edit-in-place widget
  - Collections of selectable key/label pairs
  - Update requests sent to the persistence endpoint and their results
  - Journal entries recorded for every update request

# Field Kinds

Kind names the form strategy used for a field:
  - KindInput: single-line text input
  - KindTextarea: multi-line text area
  - KindSelect: drop-down populated from a Collection
  - KindCheckbox: boolean toggle labelled by a two-entry Collection

# Update Types

UpdateRequest:
  - Target URL and HTTP verb
  - Object and attribute identifiers (object[attribute]=value)
  - Anti-forgery token pair read from the document

UpdateResult:
  - HTTP status and raw body
  - Duration and size metrics
  - Request id used to correlate journal entries

# Thread Safety

All types are plain values. Callers own synchronization.
*/
package types
