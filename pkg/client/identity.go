// pkg/client/identity.go
package client

import (
	"net/url"
	"strconv"
)

// AssetType discriminates the identity union.
type AssetType string

const (
	AssetTypeShots      AssetType = "shots"
	AssetTypeActor      AssetType = "actor"
	AssetTypeLocation   AssetType = "location"
	AssetTypeKeyVisual  AssetType = "keyVisual"
	AssetTypeStandalone AssetType = "standalone"
)

// MediaKind selects the media pipeline an asset belongs to.
type MediaKind string

const (
	MediaKindImage MediaKind = "image"
	MediaKindAudio MediaKind = "audio"
)

// AssetIdentity names a version set. Type decides which fields are required:
// every non-standalone variant is scoped to a script version, and shots,
// actor and location variants carry their own coordinates on top.
type AssetIdentity struct {
	Type      AssetType
	MediaKind MediaKind

	ScriptID        string
	ScriptVersionID string

	SceneID           *int64
	ShotID            *int64
	ActorID           *int64
	ActorVersionID    *int64
	LocationID        *int64
	LocationVersionID *int64
	PromptType        string
}

// Validate checks the active variant's required fields without touching the
// network, so a malformed identity fails fast.
func (id *AssetIdentity) Validate() error {
	missing := func(field string) error {
		return &ValidationError{
			Field:   field,
			Message: string(id.Type) + " identity is missing " + field,
		}
	}

	// The discriminant is checked before any field so an unknown type is
	// never misreported as a missing scope.
	switch id.Type {
	case AssetTypeShots, AssetTypeActor, AssetTypeLocation, AssetTypeKeyVisual, AssetTypeStandalone:
	default:
		return &ValidationError{Field: "type", Message: "unknown asset type " + strconv.Quote(string(id.Type))}
	}

	if id.Type != AssetTypeStandalone {
		if id.ScriptID == "" {
			return missing("scriptId")
		}
		if id.ScriptVersionID == "" {
			return missing("versionId")
		}
	}

	switch id.Type {
	case AssetTypeShots:
		if id.SceneID == nil {
			return missing("sceneId")
		}
		if id.ShotID == nil {
			return missing("shotId")
		}
	case AssetTypeActor:
		if id.ActorID == nil {
			return missing("actorId")
		}
		if id.ActorVersionID == nil {
			return missing("actorVersionId")
		}
	case AssetTypeLocation:
		if id.LocationID == nil {
			return missing("locationId")
		}
		if id.LocationVersionID == nil {
			return missing("locationVersionId")
		}
		if id.PromptType == "" {
			return missing("promptType")
		}
	}

	return nil
}

// BuildQuery turns a validated identity into request query parameters.
// Standalone assets emit no script-version scope; each variant emits exactly
// the fields it declares.
func (id *AssetIdentity) BuildQuery() (url.Values, error) {
	if err := id.Validate(); err != nil {
		return nil, err
	}

	q := url.Values{}
	q.Set("type", string(id.Type))
	q.Set("kind", string(id.MediaKind))

	if id.Type != AssetTypeStandalone {
		q.Set("scriptId", id.ScriptID)
		q.Set("versionId", id.ScriptVersionID)
	}

	setInt := func(name string, v *int64) {
		q.Set(name, strconv.FormatInt(*v, 10))
	}

	switch id.Type {
	case AssetTypeShots:
		setInt("sceneId", id.SceneID)
		setInt("shotId", id.ShotID)
	case AssetTypeActor:
		setInt("actorId", id.ActorID)
		setInt("actorVersionId", id.ActorVersionID)
	case AssetTypeLocation:
		setInt("locationId", id.LocationID)
		setInt("locationVersionId", id.LocationVersionID)
		q.Set("promptType", id.PromptType)
	}

	return q, nil
}
