package main

import (
	"errors"
	"fmt"

	flag "github.com/spf13/pflag"

	"github.com/alnah/go-qrtable/internal/config"
)

// runConfig prints the effective configuration as YAML.
func runConfig(args []string, env *Environment) error {
	flags, err := parseConfigFlags(args, env.Stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return err
		}
		return fmt.Errorf("%w: %v", ErrInvalidFlag, err)
	}

	cfg := config.DefaultConfig()
	if flags.config != "" {
		cfg, err = config.LoadConfig(flags.config)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
	}

	out, err := effectiveConfig(cfg).Dump()
	if err != nil {
		return err
	}
	_, _ = env.Stdout.Write(out)
	return nil
}
