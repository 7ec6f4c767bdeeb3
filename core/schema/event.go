package schema

import "time"

// Event type emitted by Cloud Storage through Eventarc when an object is
// written.
const ObjectFinalizedType = "google.cloud.storage.object.v1.finalized"

// StorageObjectData is the payload of a Cloud Storage object CloudEvent.
type StorageObjectData struct {
	Bucket      string    `json:"bucket"`
	Name        string    `json:"name"`
	ContentType string    `json:"contentType,omitempty"`
	Size        string    `json:"size,omitempty"`
	TimeCreated time.Time `json:"timeCreated,omitempty"`
	Updated     time.Time `json:"updated,omitempty"`
}
