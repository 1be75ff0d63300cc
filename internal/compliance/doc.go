package compliance

//go:generate mockgen -destination=mock_gate.go -package=compliance github.com/LeJamon/goPayloadd/internal/core/tx Gate
