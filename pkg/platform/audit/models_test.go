package audit

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAuditEvent_Category(t *testing.T) {
	assert.Equal(t, CategoryCompliance, EventComplianceChecked.Category())
	assert.Equal(t, CategoryOperations, EventSLASweepCompleted.Category())
	assert.Equal(t, CategoryOperations, AuditEvent("something_new").Category())
}
