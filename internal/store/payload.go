package store

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/partstream/fitment/internal/model"
)

// DecodeMappingPayload parses a bulk mapping import document
func DecodeMappingPayload(data []byte) (model.MappingPayload, error) {
	var payload model.MappingPayload
	if err := yaml.Unmarshal(data, &payload); err != nil {
		return model.MappingPayload{}, fmt.Errorf("decode mapping payload: %w", err)
	}

	for i, m := range payload.Mappings {
		if m.Pattern == "" {
			return model.MappingPayload{}, fmt.Errorf("mapping %d: pattern is required", i)
		}
		if m.Canonical.Make == "" || m.Canonical.Model == "" {
			return model.MappingPayload{}, fmt.Errorf("mapping %d (%q): canonical make and model are required", i, m.Pattern)
		}
	}
	return payload, nil
}

// EncodeMappingPayload renders mappings as a bulk export document
func EncodeMappingPayload(mappings []model.VehiclePhraseMapping) ([]byte, error) {
	data, err := yaml.Marshal(model.MappingPayload{Mappings: mappings})
	if err != nil {
		return nil, fmt.Errorf("encode mapping payload: %w", err)
	}
	return data, nil
}
