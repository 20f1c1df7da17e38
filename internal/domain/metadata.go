package domain

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Metadata is the type-specific part of an entity profile. Exactly one
// variant exists per EntityType.
type Metadata interface {
	EntityType() EntityType
	isMetadata()
}

type NetworkMetadata struct {
	SupportedModels   []string `json:"supported_models"`
	PaymentTerms      string   `json:"payment_terms"`
	TrackingPlatforms []string `json:"tracking_platforms,omitempty"`
	Verticals         []string `json:"verticals,omitempty"`
}

type AdvertiserMetadata struct {
	ProgramName string   `json:"program_name"`
	PayoutTypes []string `json:"payout_types"`
	Verticals   []string `json:"verticals,omitempty"`
	TargetGeos  []string `json:"target_geos,omitempty"`
}

type AffiliateMetadata struct {
	TrafficProvidedGeos []string `json:"traffic_provided_geos"`
	TrafficSources      []string `json:"traffic_sources,omitempty"`
	MonthlyVolume       string   `json:"monthly_volume,omitempty"`
}

func (NetworkMetadata) EntityType() EntityType    { return EntityNetwork }
func (AdvertiserMetadata) EntityType() EntityType { return EntityAdvertiser }
func (AffiliateMetadata) EntityType() EntityType  { return EntityAffiliate }

func (NetworkMetadata) isMetadata()    {}
func (AdvertiserMetadata) isMetadata() {}
func (AffiliateMetadata) isMetadata()  {}

var requiredMetadataFields = map[EntityType][]string{
	EntityNetwork:    {"supported_models", "payment_terms"},
	EntityAdvertiser: {"program_name", "payout_types"},
	EntityAffiliate:  {"traffic_provided_geos"},
}

// RequiredMetadataFields lists the metadata keys an entity type must carry.
func RequiredMetadataFields(t EntityType) []string {
	return append([]string(nil), requiredMetadataFields[t]...)
}

// MissingMetadataError lists every required key that was absent or empty.
type MissingMetadataError struct {
	EntityType EntityType
	Fields     []string
}

func (e *MissingMetadataError) Error() string {
	return fmt.Sprintf("missing required metadata for %s: %s", e.EntityType, strings.Join(e.Fields, ", "))
}

// ParseMetadata decodes raw JSON into the variant for t. A key counts as
// missing when it is absent, null, a blank string or an empty list.
func ParseMetadata(t EntityType, raw json.RawMessage) (Metadata, error) {
	if !t.Valid() {
		return nil, fmt.Errorf("unknown entity type %q", t)
	}

	fields := map[string]json.RawMessage{}
	if len(raw) > 0 && string(raw) != "null" {
		if err := json.Unmarshal(raw, &fields); err != nil {
			return nil, fmt.Errorf("metadata must be a JSON object: %w", err)
		}
	}

	var missing []string
	for _, key := range requiredMetadataFields[t] {
		if isBlankJSON(fields[key]) {
			missing = append(missing, key)
		}
	}
	if len(missing) > 0 {
		return nil, &MissingMetadataError{EntityType: t, Fields: missing}
	}

	var (
		md  Metadata
		err error
	)
	switch t {
	case EntityNetwork:
		var v NetworkMetadata
		err = json.Unmarshal(raw, &v)
		md = v
	case EntityAdvertiser:
		var v AdvertiserMetadata
		err = json.Unmarshal(raw, &v)
		md = v
	case EntityAffiliate:
		var v AffiliateMetadata
		err = json.Unmarshal(raw, &v)
		md = v
	}
	if err != nil {
		return nil, fmt.Errorf("invalid %s metadata: %w", t, err)
	}
	return md, nil
}

func isBlankJSON(v json.RawMessage) bool {
	if len(v) == 0 {
		return true
	}
	var decoded any
	if err := json.Unmarshal(v, &decoded); err != nil {
		return false
	}
	return isBlankValue(decoded)
}

// isBlankValue treats a list as blank when every element is blank.
func isBlankValue(v any) bool {
	switch x := v.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(x) == ""
	case []any:
		for _, el := range x {
			if !isBlankValue(el) {
				return false
			}
		}
		return true
	case map[string]any:
		return len(x) == 0
	}
	return false
}

// DecodeMetadata decodes stored metadata without enforcing required keys.
func DecodeMetadata(t EntityType, raw []byte) (Metadata, error) {
	if len(raw) == 0 {
		raw = []byte("{}")
	}
	switch t {
	case EntityNetwork:
		var v NetworkMetadata
		err := json.Unmarshal(raw, &v)
		return v, err
	case EntityAdvertiser:
		var v AdvertiserMetadata
		err := json.Unmarshal(raw, &v)
		return v, err
	case EntityAffiliate:
		var v AffiliateMetadata
		err := json.Unmarshal(raw, &v)
		return v, err
	}
	return nil, fmt.Errorf("unknown entity type %q", t)
}
