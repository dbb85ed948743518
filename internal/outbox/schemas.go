package outbox

const sessionRecordedSchema = `{
  "type": "object",
  "title": "SessionRecorded",
  "properties": {
    "session_id": {"type": "string"},
    "tenant_id": {"type": "string"},
    "athlete_id": {"type": "string"},
    "sport": {"type": "string"},
    "started_at": {"type": "string", "format": "date-time"},
    "distance_km": {"type": "number"},
    "duration_sec": {"type": "integer"},
    "pace_sec_per_km": {"type": "integer"},
    "calories": {"type": "number"},
    "source": {"type": "string"},
    "version": {"type": "string"}
  },
  "required": ["session_id", "tenant_id", "athlete_id", "sport", "started_at", "distance_km", "duration_sec", "calories", "source", "version"],
  "additionalProperties": false
}`

const sessionUpdatedSchema = `{
  "type": "object",
  "title": "SessionUpdated",
  "properties": {
    "session_id": {"type": "string"},
    "tenant_id": {"type": "string"},
    "athlete_id": {"type": "string"},
    "sport": {"type": "string"},
    "started_at": {"type": "string", "format": "date-time"},
    "distance_km": {"type": "number"},
    "duration_sec": {"type": "integer"},
    "pace_sec_per_km": {"type": "integer"},
    "calories": {"type": "number"},
    "occurred_at": {"type": "string", "format": "date-time"}
  },
  "required": ["session_id", "tenant_id", "athlete_id", "sport", "started_at", "distance_km", "duration_sec", "calories", "occurred_at"],
  "additionalProperties": false
}`

const sessionDeletedSchema = `{
  "type": "object",
  "title": "SessionDeleted",
  "properties": {
    "session_id": {"type": "string"},
    "tenant_id": {"type": "string"},
    "athlete_id": {"type": "string"},
    "occurred_at": {"type": "string", "format": "date-time"}
  },
  "required": ["session_id", "tenant_id", "athlete_id", "occurred_at"],
  "additionalProperties": false
}`
