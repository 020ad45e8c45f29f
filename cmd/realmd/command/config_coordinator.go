package command

import (
	"fmt"
	"time"

	"github.com/pixil98/go-errors"
)

type CoordinatorConfig struct {
	AllowMixedFactions bool `json:"allow_mixed_factions"`
	AllowGMGroups      bool `json:"allow_gm_groups"`

	RollTimeout       string `json:"roll_timeout,omitempty"`
	ReadyCheckTimeout string `json:"ready_check_timeout,omitempty"`
}

func (c *CoordinatorConfig) Validate() error {
	el := errors.NewErrorList()

	for name, v := range map[string]string{
		"roll_timeout":        c.RollTimeout,
		"ready_check_timeout": c.ReadyCheckTimeout,
	} {
		if v == "" {
			continue
		}
		d, err := time.ParseDuration(v)
		if err != nil {
			el.Add(fmt.Errorf("parsing %s: %w", name, err))
		} else if d <= 0 {
			el.Add(fmt.Errorf("%s must be positive", name))
		}
	}

	return el.Err()
}

func (c *CoordinatorConfig) rollTimeout() time.Duration {
	d, _ := time.ParseDuration(c.RollTimeout)
	return d
}

func (c *CoordinatorConfig) readyCheckTimeout() time.Duration {
	d, _ := time.ParseDuration(c.ReadyCheckTimeout)
	return d
}
