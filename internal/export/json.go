// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package export

import (
	"encoding/json"
	"fmt"

	"github.com/jeranaias/helix-tui/internal/model"
)

// JSONExporter writes the transcript with the same message and sequence
// shapes the sync API uses.
type JSONExporter struct{}

// NewJSONExporter creates a JSON exporter.
func NewJSONExporter() *JSONExporter {
	return &JSONExporter{}
}

// Export implements Exporter.
func (e *JSONExporter) Export(t *Transcript) ([]byte, error) {
	if t == nil {
		return nil, fmt.Errorf("transcript is nil")
	}
	out := *t
	if out.Messages == nil {
		out.Messages = []model.Message{}
	}
	if out.Sequence.Steps == nil {
		out.Sequence.Steps = []model.Step{}
	}
	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}

// FileExtension implements Exporter.
func (e *JSONExporter) FileExtension() string {
	return ".json"
}
