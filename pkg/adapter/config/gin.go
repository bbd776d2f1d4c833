// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package config

import (
	"fmt"
	"time"

	"github.com/momeni/school-library/pkg/adapter/config/settings"
	"github.com/momeni/school-library/pkg/adapter/restful/gin"
)

// Gin contains the gin-gonic related configuration settings.
// Fields are defined as pointers, so it is possible to detect if they
// are or are not initialized and fill them by their default values.
type Gin struct {
	Logger   *bool // Whether to register the gin.Logger() middleware
	Recovery *bool // Whether to register the gin.Recovery() middleware

	// RateLimit throttles the mutating APIs per client. A missing
	// (or zero) rps disables throttling.
	RateLimit RateLimit `yaml:"rate-limit"`
}

// RateLimit contains the token bucket settings of each client.
type RateLimit struct {
	RPS   *float64 `yaml:"rps,omitempty"`
	Burst *int     `yaml:"burst,omitempty"`

	// Idle is the duration which a client limiter is kept after
	// its last request.
	Idle *settings.Duration `yaml:"idle,omitempty"`
}

// NewEngine instantiates a new gin-gonic engine instance based on
// the `g` settings.
func (g Gin) NewEngine() *gin.Engine {
	middlewares := make([]gin.HandlerFunc, 0, 2)
	if *g.Logger {
		middlewares = append(middlewares, gin.Logger())
	}
	if *g.Recovery {
		middlewares = append(middlewares, gin.Recovery())
	}
	return gin.New(middlewares...)
}

// Throttle returns the rate limiting middlewares which should run
// before the mutating APIs. It is empty if throttling is disabled.
func (g Gin) Throttle() []gin.HandlerFunc {
	rl := g.RateLimit
	if rl.RPS == nil || *rl.RPS == 0 {
		return nil
	}
	limiter := gin.NewRateLimiter(
		*rl.RPS, *rl.Burst, time.Duration(*rl.Idle),
	)
	return []gin.HandlerFunc{limiter.Middleware()}
}

// ValidateAndNormalize fills the missing gin settings by their default
// values and checks the rate limiting settings.
func (g *Gin) ValidateAndNormalize() error {
	settings.Nil2Zero(&g.Logger)
	settings.Nil2Zero(&g.Recovery)
	rl := &g.RateLimit
	settings.Nil2Zero(&rl.RPS)
	if *rl.RPS < 0 {
		return fmt.Errorf("negative rate limit rps: %v", *rl.RPS)
	}
	if rl.Burst == nil {
		burst := 1
		if *rl.RPS > 1 {
			burst = int(*rl.RPS)
		}
		rl.Burst = &burst
	}
	if *rl.Burst < 1 {
		return fmt.Errorf("rate limit burst must be positive: %d", *rl.Burst)
	}
	settings.Default(&rl.Idle, settings.Duration(5*time.Minute))
	return nil
}
