package app

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/urmzd/yeehome/pkg/command"
	"github.com/urmzd/yeehome/pkg/config"
	"github.com/urmzd/yeehome/pkg/db"
	"github.com/urmzd/yeehome/pkg/gateway"
	"github.com/urmzd/yeehome/pkg/gateway/gatewaytest"
)

func fakeGateway(req gateway.Response) [][]byte {
	id, _ := req.ID()
	switch req.Method() {
	case gateway.MethodGetTopology:
		return [][]byte{gatewaytest.Frame(map[string]any{
			"method": gateway.MethodPostTopology,
			"nodes": []any{
				map[string]any{"id": 101, "nt": 2, "n": "客厅灯带", "type": 2},
			},
		})}
	case gateway.MethodGetRoom:
		return [][]byte{gatewaytest.Frame(map[string]any{"id": id, "rooms": []any{}})}
	case gateway.MethodSetProp:
		return gatewaytest.Echo(req)
	}
	return nil
}

func testConfig(host string) *config.Config {
	cfg := config.Default()
	cfg.Database.Path = db.MemoryPath
	cfg.Gateway.Host = host
	cfg.Gateway.ReadTimeout = 50
	cfg.Gateway.ResponseTimeout = 500
	cfg.Gateway.ConnectTimeout = 1000
	return cfg
}

func TestApp_ConnectConfiguredHostAndExecute(t *testing.T) {
	srv := gatewaytest.NewServer(fakeGateway)
	defer srv.Close()

	ctx := context.Background()
	a, err := New(ctx, testConfig(srv.Addr.String()))
	require.NoError(t, err)
	defer func() { assert.NoError(t, a.Close()) }()

	info, err := a.Connect(ctx)
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1", info.IP)
	assert.True(t, a.Controller.IsConnected())

	last, err := a.DB.Gateways().Last(ctx)
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1", last.IP)

	res, err := a.Controller.Execute(ctx, command.Intent{
		Domain: command.DomainLight,
		Name:   "客厅灯带",
		Action: command.ActionTurnOn,
	})
	require.NoError(t, err)
	assert.Equal(t, "已打开：客厅灯带", res.Message)

	cached, err := a.DB.Nodes().ListNodes(ctx)
	require.NoError(t, err)
	require.Len(t, cached, 1)
	assert.Equal(t, "客厅灯带", cached[0].Name)

	recent := a.Hub.Recent(0)
	require.NotEmpty(t, recent)
	assert.Contains(t, recent[0].Message, "成功连接到网关")
}

func TestApp_ConnectFailureLeavesDisconnected(t *testing.T) {
	srv := gatewaytest.NewServer(nil)
	addr := srv.Addr.String()
	srv.Close()

	ctx := context.Background()
	a, err := New(ctx, testConfig(addr))
	require.NoError(t, err)
	defer a.Close()

	_, err = a.Connect(ctx)
	assert.ErrorIs(t, err, gateway.ErrConnection)
	assert.False(t, a.Controller.IsConnected())
}
