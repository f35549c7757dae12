package outbox

const activityCreatedSchema = `{
  "type": "object",
  "title": "ActivityCreated",
  "properties": {
    "activity_id": {"type": "string"},
    "title": {"type": "string"},
    "category": {"type": "string"},
    "difficulty_level": {"type": "string"},
    "estimated_minutes": {"type": "integer"},
    "created_at": {"type": "string", "format": "date-time"}
  },
  "required": ["activity_id", "title", "category", "created_at"],
  "additionalProperties": false
}`

const childActivityStateChangedSchema = `{
  "type": "object",
  "title": "ChildActivityStateChanged",
  "properties": {
    "child_activity_id": {"type": "string"},
    "family_id": {"type": "string"},
    "child_id": {"type": "string"},
    "activity_id": {"type": "string"},
    "category": {"type": "string"},
    "state": {"type": "string"},
    "rating": {"type": "integer"},
    "occurred_at": {"type": "string", "format": "date-time"}
  },
  "required": ["child_activity_id", "family_id", "child_id", "activity_id", "state", "occurred_at"],
  "additionalProperties": false
}`
