package integration_test

import (
	"context"
	"encoding/json"
	"os"
	"os/exec"
	"testing"
	"time"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/require"
)

func serverBinary(t *testing.T) string {
	t.Helper()
	for _, path := range []string{"./bin/cuer-live", "../../bin/cuer-live"} {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	t.Skip("server binary not found, run 'go build -o bin/cuer-live ./cmd/server' first")
	return ""
}

// TestStdioProtocolCompliance drives the server over stdio with the
// official MCP SDK client, which catches protocol issues shell-based
// tests miss.
func TestStdioProtocolCompliance(t *testing.T) {
	binaryPath := serverBinary(t)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	cmd := exec.CommandContext(ctx, binaryPath)
	cmd.Env = append(os.Environ(),
		"CUER_TRANSPORT_MODE=stdio",
		"CUER_DB_PATH=:memory:",
	)

	transport := &sdkmcp.CommandTransport{
		Command: cmd,
	}

	client := sdkmcp.NewClient(&sdkmcp.Implementation{
		Name:    "test-client",
		Version: "1.0.0",
	}, nil)

	session, err := client.Connect(ctx, transport, nil)
	require.NoError(t, err, "connect failed")
	defer session.Close()

	t.Run("ServerInfo", func(t *testing.T) {
		initResult := session.InitializeResult()
		require.NotNil(t, initResult)
		require.NotNil(t, initResult.ServerInfo)
		require.Equal(t, "cuer-live", initResult.ServerInfo.Name)
		require.Equal(t, "0.1.0", initResult.ServerInfo.Version)
	})

	t.Run("ListTools", func(t *testing.T) {
		tools, err := session.ListTools(ctx, nil)
		require.NoError(t, err, "tools/list failed")
		require.Greater(t, len(tools.Tools), 20)

		toolNames := make(map[string]bool)
		for _, tool := range tools.Tools {
			toolNames[tool.Name] = true
		}
		expectedTools := []string{
			"create_rundown",
			"get_rundown",
			"add_item",
			"update_field",
			"lock_numbering",
			"showcaller_play",
			"open_session",
			"sync_session",
			"guard_resolve",
		}
		for _, name := range expectedTools {
			require.True(t, toolNames[name], "missing expected tool: %s", name)
		}
	})

	t.Run("ListResources", func(t *testing.T) {
		resources, err := session.ListResources(ctx, nil)
		require.NoError(t, err, "resources/list failed")
		require.NotEmpty(t, resources.Resources)
	})

	t.Run("CreateRundown", func(t *testing.T) {
		result, err := session.CallTool(ctx, &sdkmcp.CallToolParams{
			Name: "create_rundown",
			Arguments: map[string]any{
				"title":      "Protocol Test",
				"start_time": "12:00:00",
			},
		})
		require.NoError(t, err, "tools/call create_rundown failed")
		require.False(t, result.IsError, "create_rundown returned error: %v", result)
		require.NotEmpty(t, result.Content)

		text, ok := result.Content[0].(*sdkmcp.TextContent)
		require.True(t, ok, "expected text content")

		var doc struct {
			ID string `json:"id"`
		}
		require.NoError(t, json.Unmarshal([]byte(text.Text), &doc))
		require.NotEmpty(t, doc.ID)
	})

	t.Run("ListRundowns", func(t *testing.T) {
		result, err := session.CallTool(ctx, &sdkmcp.CallToolParams{
			Name: "list_rundowns",
		})
		require.NoError(t, err, "tools/call list_rundowns failed")
		require.False(t, result.IsError, "list_rundowns returned error: %v", result)
		require.NotEmpty(t, result.Content)
	})

	t.Run("ToolErrorShape", func(t *testing.T) {
		result, err := session.CallTool(ctx, &sdkmcp.CallToolParams{
			Name: "get_rundown",
			Arguments: map[string]any{
				"id": "no-such-rundown",
			},
		})
		require.NoError(t, err, "tools/call get_rundown failed")
		require.True(t, result.IsError)
		require.NotEmpty(t, result.Content)

		text, ok := result.Content[0].(*sdkmcp.TextContent)
		require.True(t, ok)
		require.Contains(t, text.Text, "RUNDOWN_NOT_FOUND")
	})
}

// TestStdioProtocol_StdoutHygiene verifies the server writes nothing to
// stdout except JSON-RPC messages; logs belong on stderr.
func TestStdioProtocol_StdoutHygiene(t *testing.T) {
	binaryPath := serverBinary(t)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	cmd := exec.CommandContext(ctx, binaryPath)
	cmd.Env = append(os.Environ(),
		"CUER_TRANSPORT_MODE=stdio",
		"CUER_DB_PATH=:memory:",
	)

	stdin, err := cmd.StdinPipe()
	require.NoError(t, err)
	stdout, err := cmd.StdoutPipe()
	require.NoError(t, err)
	stderr, err := cmd.StderrPipe()
	require.NoError(t, err)

	require.NoError(t, cmd.Start())

	initReq := `{"jsonrpc":"2.0","method":"initialize","params":{"protocolVersion":"2024-11-05","capabilities":{},"clientInfo":{"name":"test","version":"1.0"}},"id":1}`
	_, err = stdin.Write([]byte(initReq + "\n"))
	require.NoError(t, err)

	done := make(chan struct{})
	var stdoutBytes, stderrBytes []byte
	go func() {
		stdoutBytes, _ = readWithTimeout(stdout, 2*time.Second)
		stderrBytes, _ = readWithTimeout(stderr, 2*time.Second)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		cmd.Process.Kill()
		t.Fatal("timeout waiting for server response")
	}

	stdin.Close()
	cmd.Process.Kill()
	cmd.Wait()

	require.NotEmpty(t, stdoutBytes, "server produced no stdout output")
	require.Equal(t, byte('{'), stdoutBytes[0], "stdout must start with a JSON-RPC message, got: %q", string(stdoutBytes[:min(50, len(stdoutBytes))]))

	t.Logf("stderr output (logs): %s", string(stderrBytes))
}

func readWithTimeout(r interface{ Read([]byte) (int, error) }, timeout time.Duration) ([]byte, error) {
	result := make([]byte, 0, 4096)
	buf := make([]byte, 1024)

	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		done := make(chan struct{})
		var n int
		var err error
		go func() {
			n, err = r.Read(buf)
			close(done)
		}()

		select {
		case <-done:
			if n > 0 {
				result = append(result, buf[:n]...)
			}
			if err != nil {
				return result, err
			}
		case <-time.After(100 * time.Millisecond):
			if len(result) > 0 {
				return result, nil
			}
		}
	}
	return result, nil
}
