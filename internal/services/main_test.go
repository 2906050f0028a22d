package services

import (
	"testing"

	"go.uber.org/goleak"
)

// PlanBatch fans out goroutines; none may outlive a call.
func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}
