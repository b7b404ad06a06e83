package archive

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestObjectPath(t *testing.T) {
	at := time.Date(2024, 3, 9, 14, 5, 6, 7, time.FixedZone("WIB", 7*3600))
	got := objectPath("u1", "expenses_2024-03-09.csv", at)
	assert.Equal(t, "reports/u1/2024/03/20240309T070506.000000007_expenses_2024-03-09.csv", got)
}

func TestObjectPath_StripsDirectories(t *testing.T) {
	at := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	got := objectPath("u1", "../../etc/passwd", at)
	assert.Equal(t, "reports/u1/2024/01/20240101T000000.000000000_passwd", got)
}
