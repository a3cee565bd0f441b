package cli

import (
	"context"
	"fmt"
)

// modelsList prints what /v1/models currently reports. A single base-model
// entry is called out explicitly so users waiting for an adapter deploy see
// why their adapter is not routable yet.
func modelsList(ctx context.Context, cfg *Config) error {
	client := newClient(cfg)
	ml, err := client.ListModels(ctx)
	if err != nil {
		return err
	}
	if len(ml.Data) == 0 {
		fmt.Println("no models reported; is the server still initializing?")
		return nil
	}
	for _, m := range ml.Data {
		kind := "base model"
		if m.IsAdapter() {
			kind = "adapter"
			if m.Parent != "" {
				kind = fmt.Sprintf("adapter of %s", m.Parent)
			}
		}
		fmt.Printf("%-50s %s\n", m.ID, kind)
	}
	if len(ml.Data) == 1 && !ml.Data[0].IsAdapter() {
		fmt.Println("1 model found: base model only, adapter not yet loaded")
	} else {
		fmt.Printf("%d models available\n", len(ml.Data))
	}
	return nil
}
