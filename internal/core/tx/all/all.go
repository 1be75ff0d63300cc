// Package all imports all transaction sub-packages to trigger their init() registrations.
// Import this package in the main application to ensure all transaction types are registered.
package all

import (
	_ "github.com/LeJamon/goPayloadd/internal/core/tx/asset"
	_ "github.com/LeJamon/goPayloadd/internal/core/tx/compliance"
	_ "github.com/LeJamon/goPayloadd/internal/core/tx/division"
	_ "github.com/LeJamon/goPayloadd/internal/core/tx/factory"
	_ "github.com/LeJamon/goPayloadd/internal/core/tx/market"
	_ "github.com/LeJamon/goPayloadd/internal/core/tx/money"
)
