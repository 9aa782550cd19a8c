package board

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	leadcli "github.com/thenoetrevino/leadboard/internal/cli"
	"github.com/thenoetrevino/leadboard/internal/testutil"
	"github.com/thenoetrevino/leadboard/internal/testutil/cli"
)

func TestCreateBoard_Integration(t *testing.T) {
	app, _ := cli.SetupCLITest(t)

	output, err := cli.ExecuteCLICommand(t, app, CreateCmd(), []string{"--id", "acme", "--name", "Acme Sales", "--json"})
	require.NoError(t, err)

	result := testutil.ParseJSON(t, output)
	assert.Equal(t, true, result["success"])
	data := result["data"].(map[string]any)
	assert.Equal(t, "acme", data["id"])
	assert.Equal(t, "Acme Sales", data["name"])

	// Creating it again is a no-op
	output, err = cli.ExecuteCLICommand(t, app, CreateCmd(), []string{"--id", "acme", "--name", "Other", "--quiet"})
	require.NoError(t, err)
	assert.Equal(t, "acme\n", output)
}

func TestCreateBoard_GeneratedID(t *testing.T) {
	app, _ := cli.SetupCLITest(t)

	output, err := cli.ExecuteCLICommand(t, app, CreateCmd(), []string{"--name", "Inbound", "--quiet"})
	require.NoError(t, err)
	assert.Len(t, output, 37, "uuid plus newline")
}

func TestListBoards_Integration(t *testing.T) {
	app, st := cli.SetupCLITest(t)

	output, err := cli.ExecuteCLICommand(t, app, ListCmd(), nil)
	require.NoError(t, err)
	assert.Contains(t, output, "No boards found")

	testutil.CreateTestBoard(t, st, "acme")
	testutil.CreateTestBoard(t, st, "beta")

	output, err = cli.ExecuteCLICommand(t, app, ListCmd(), []string{"--quiet"})
	require.NoError(t, err)
	assert.Equal(t, "acme\nbeta\n", output)
}

func TestShowBoard_Integration(t *testing.T) {
	app, st := cli.SetupCLITest(t)
	statuses := cli.SetupBoard(t, st, "New", "Won")
	cli.CreateTestLead(t, st, "acme", statuses[0], "Ana")
	cli.CreateTestLead(t, st, "acme", statuses[1], "Bo")

	t.Run("human", func(t *testing.T) {
		output, err := cli.ExecuteCLICommand(t, app, ShowCmd(), []string{"--board", "acme"})
		require.NoError(t, err)
		assert.Contains(t, output, "New")
		assert.Contains(t, output, "Won")
		assert.Contains(t, output, "Ana")
		assert.Contains(t, output, "Bo")
	})

	t.Run("json", func(t *testing.T) {
		output, err := cli.ExecuteCLICommand(t, app, ShowCmd(), []string{"--board", "acme", "--json"})
		require.NoError(t, err)
		data := testutil.ParseJSON(t, output)["data"].(map[string]any)
		columns := data["statuses"].([]any)
		require.Len(t, columns, 2)
		assert.Equal(t, "new", columns[0].(map[string]any)["id"])
	})

	t.Run("quiet lists lead ids in board order", func(t *testing.T) {
		output, err := cli.ExecuteCLICommand(t, app, ShowCmd(), []string{"--board", "acme", "--quiet"})
		require.NoError(t, err)
		assert.Equal(t, "ana\nbo\n", output)
	})

	t.Run("environment", func(t *testing.T) {
		t.Setenv(leadcli.BoardEnv, "acme")
		_, err := cli.ExecuteCLICommand(t, app, ShowCmd(), []string{"--quiet"})
		require.NoError(t, err)
	})
}

func TestShowBoard_NotFound(t *testing.T) {
	app, _ := cli.SetupCLITest(t)

	output, err := cli.ExecuteCLICommand(t, app, ShowCmd(), []string{"--board", "ghost", "--json"})
	require.Error(t, err)

	var cmdErr *leadcli.CommandError
	require.True(t, errors.As(err, &cmdErr))
	assert.Equal(t, leadcli.ExitNotFound, cmdErr.Code)

	result := testutil.ParseJSON(t, output)
	assert.Equal(t, false, result["success"])
	assert.Equal(t, "BOARD_NOT_FOUND", result["error"].(map[string]any)["code"])
}
