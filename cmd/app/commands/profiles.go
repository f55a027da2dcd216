package commands

import (
	"encoding/json"
	"fmt"

	"github.com/allisson/anonymizer/internal/engine"
)

// RunProfiles lists the built-in anonymization profiles.
func RunProfiles(format string, streams IOTuple) error {
	profiles := engine.Profiles()

	if format == "json" {
		encoder := json.NewEncoder(streams.Writer)
		encoder.SetIndent("", "  ")
		return encoder.Encode(profiles)
	}

	for _, profile := range profiles {
		if _, err := fmt.Fprintf(
			streams.Writer,
			"%s\t%s\t%s\n",
			profile.Name, profile.Mode, profile.Description,
		); err != nil {
			return err
		}
	}
	return nil
}
