package report

import (
	"encoding/json"
	"fmt"

	"github.com/boscoh/breachwatch/internal/domain/model"
)

// RenderJSON emits the structured report format. It is the persisted format:
// ParseJSON reads it back losslessly.
func RenderJSON(r model.Report) ([]byte, error) {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal report: %w", err)
	}
	return data, nil
}

// ParseJSON decodes a report previously produced by RenderJSON.
func ParseJSON(data []byte) (*model.Report, error) {
	var r model.Report
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("unmarshal report: %w", err)
	}
	return &r, nil
}
