//////////////////////////////////////////////////////////////////////////////
//
// Pipeline errors
//
// Copyright 2019 Lanikai Labs LLC. All rights reserved.
//
//////////////////////////////////////////////////////////////////////////////

package framecast

import "github.com/pkg/errors"

var (
	// ErrStopped is the cancellation cause of a pipeline stopped by Stop.
	// Wait reports it as a clean shutdown.
	ErrStopped = errors.New("framecast: stopped")

	errAlreadyStarted = errors.New("framecast: pipeline already started")
	errNotStarted     = errors.New("framecast: pipeline not started")
)
