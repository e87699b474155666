package observability

import (
	"testing"
)

func TestRegisterMetricsAndRecordersAreSafe(t *testing.T) {
	RegisterMetrics()
	RegisterMetrics()

	RecordRegistration()
	RecordRevocation("gate")
	RecordRevocation("trusted")
	RecordRemoval()
	RecordCheck("ok")
	RecordCheck("revoked")
}
