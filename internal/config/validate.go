// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved. This file is part of cc-backend.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.
package config

import (
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// Validate compiles schema and checks instance against it, returning a
// descriptive error instead of aborting the process -- callers decide
// whether a bad config file is fatal.
func Validate(schema string, instance []byte) error {
	sch, err := jsonschema.CompileString("daxd-config.json", schema)
	if err != nil {
		return fmt.Errorf("compiling config schema: %w", err)
	}

	var v any
	if err := json.Unmarshal(instance, &v); err != nil {
		return fmt.Errorf("parsing config: %w", err)
	}

	if err := sch.Validate(v); err != nil {
		return fmt.Errorf("config does not match schema: %w", err)
	}

	return nil
}
