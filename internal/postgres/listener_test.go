// Tests for notification payload decoding. The listener loop itself
// needs a live Postgres and is covered by the sqlite-backed context
// tests through the shared hub.
package postgres

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/casebook/pkg/types"
)

func TestDecodePayload(t *testing.T) {
	table, scope, err := decodePayload(`{"table":"test_cases","id":"tc1","project_id":"p1","folder_id":"f1","test_run_id":null}`)
	require.NoError(t, err)
	assert.Equal(t, types.TableTestCases, table)
	assert.Equal(t, types.Row{"id": "tc1", "project_id": "p1", "folder_id": "f1"}, scope)
}

func TestDecodePayloadNullColumns(t *testing.T) {
	table, scope, err := decodePayload(`{"table":"projects","id":"p1","project_id":null,"folder_id":null,"test_run_id":null}`)
	require.NoError(t, err)
	assert.Equal(t, types.TableProjects, table)
	assert.Equal(t, types.Row{"id": "p1"}, scope)
}

func TestDecodePayloadErrors(t *testing.T) {
	_, _, err := decodePayload(`not json`)
	assert.Error(t, err)

	_, _, err = decodePayload(`{"id":"p1"}`)
	assert.Error(t, err, "a payload without a table is rejected")
}
