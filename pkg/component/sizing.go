/*
Copyright © 2025 VectorWeight Authors
SPDX-License-Identifier: Apache-2.0
*/

package component

import (
	"k8s.io/apimachinery/pkg/api/resource"

	"github.com/vectorweight/vectorweight/pkg/config"
)

// Sizing is the concrete capacity for a cluster size tier.
type Sizing struct {
	CPU      resource.Quantity
	Memory   resource.Quantity
	Storage  resource.Quantity
	Replicas int
}

// tier table; fixed, not configurable
var tiers = map[config.ClusterSize]Sizing{
	config.SizeMinimal: {
		CPU:      resource.MustParse("2"),
		Memory:   resource.MustParse("4Gi"),
		Storage:  resource.MustParse("50Gi"),
		Replicas: 1,
	},
	config.SizeSmall: {
		CPU:      resource.MustParse("4"),
		Memory:   resource.MustParse("8Gi"),
		Storage:  resource.MustParse("100Gi"),
		Replicas: 2,
	},
	config.SizeMedium: {
		CPU:      resource.MustParse("8"),
		Memory:   resource.MustParse("16Gi"),
		Storage:  resource.MustParse("250Gi"),
		Replicas: 3,
	},
	config.SizeLarge: {
		CPU:      resource.MustParse("16"),
		Memory:   resource.MustParse("32Gi"),
		Storage:  resource.MustParse("500Gi"),
		Replicas: 5,
	},
}

// SizingFor returns the capacity tier for a cluster size. Unknown sizes fall
// back to small; the validator rejects them before generation.
func SizingFor(size config.ClusterSize) Sizing {
	if s, ok := tiers[size]; ok {
		return s
	}
	return tiers[config.SizeSmall]
}

// resources renders the tier as a Helm resources block. Requests sit at half
// the tier limit so small clusters can overcommit.
func (s Sizing) resources() map[string]any {
	halfCPU := s.CPU.MilliValue() / 2
	halfMem := s.Memory.Value() / 2
	return map[string]any{
		"limits": map[string]any{
			"cpu":    s.CPU.String(),
			"memory": s.Memory.String(),
		},
		"requests": map[string]any{
			"cpu":    resource.NewMilliQuantity(halfCPU, resource.DecimalSI).String(),
			"memory": resource.NewQuantity(halfMem, resource.BinarySI).String(),
		},
	}
}
