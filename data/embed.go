// Package data embeds the default assessment definitions shipped with the binary.
package data

import "embed"

//go:embed assessment/*.yaml
var Assessment embed.FS

const (
	FlowFile       = "assessment/flow.yaml"
	FactorsFile    = "assessment/factors.yaml"
	InputTypesFile = "assessment/input_types.yaml"
)
