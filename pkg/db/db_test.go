package db

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/urmzd/yeehome/pkg/topology"
)

func openTest(t *testing.T) *DB {
	t.Helper()
	database, err := Open(filepath.Join(t.TempDir(), "yeehome.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close() })
	require.NoError(t, database.Migrate(context.Background()))
	return database
}

func TestMigrate_Idempotent(t *testing.T) {
	ctx := context.Background()
	database := openTest(t)

	require.NoError(t, database.Migrate(ctx))
	v, err := database.SchemaVersion(ctx)
	require.NoError(t, err)
	assert.Equal(t, len(migrations), v)
}

func TestOpen_Memory(t *testing.T) {
	database, err := Open(MemoryPath)
	require.NoError(t, err)
	defer database.Close()

	require.NoError(t, database.Migrate(context.Background()))
	assert.Equal(t, MemoryPath, database.Path())
}

func TestResolvePath(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(home, "cfg"))

	got, err := resolvePath("~/data/cache.db")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, "data", "cache.db"), got)

	got, err = resolvePath("/var/lib/yeehome.db")
	require.NoError(t, err)
	assert.Equal(t, "/var/lib/yeehome.db", got)

	if runtime.GOOS == "linux" {
		got, err = resolvePath("")
		require.NoError(t, err)
		assert.Equal(t, filepath.Join(home, "cfg", "yeehome", "yeehome.db"), got)
	}
}

func TestOpen_UnwritableDirectory(t *testing.T) {
	blocker := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(blocker, nil, 0o600))

	_, err := Open(filepath.Join(blocker, "yeehome.db"))
	assert.ErrorIs(t, err, ErrOpen)
}

func light(id int64, name string) topology.NodeInfo {
	return topology.NodeInfo{
		ID:              id,
		Type:            topology.NodeTypeMeshSubdevice,
		TypeDescription: "Mesh子设备",
		Name:            name,
		DeviceType:      topology.DeviceTypeColorLight,
	}
}

func TestNodes_SaveAndList(t *testing.T) {
	ctx := context.Background()
	store := openTest(t).Nodes()

	room := topology.NodeInfo{ID: 9, Type: topology.NodeTypeRoom, TypeDescription: "房间", Name: "客厅"}
	require.NoError(t, store.SaveNodes(ctx, []topology.NodeInfo{light(1, "灯带"), room}))

	nodes, err := store.ListNodes(ctx)
	require.NoError(t, err)
	assert.Equal(t, []topology.NodeInfo{light(1, "灯带"), room}, nodes)
}

func TestNodes_LatestBatchFirst(t *testing.T) {
	ctx := context.Background()
	store := openTest(t).Nodes()

	require.NoError(t, store.SaveNodes(ctx, []topology.NodeInfo{light(1, "a"), light(2, "b")}))
	require.NoError(t, store.SaveNodes(ctx, []topology.NodeInfo{light(3, "c"), light(4, "d")}))

	nodes, err := store.ListNodes(ctx)
	require.NoError(t, err)
	var ids []int64
	for _, n := range nodes {
		ids = append(ids, n.ID)
	}
	assert.Equal(t, []int64{3, 4, 1, 2}, ids)
}

func TestNodes_UpsertLastWriteWins(t *testing.T) {
	ctx := context.Background()
	store := openTest(t).Nodes()

	require.NoError(t, store.SaveNodes(ctx, []topology.NodeInfo{light(1, "旧名字"), light(2, "b")}))
	require.NoError(t, store.SaveNodes(ctx, []topology.NodeInfo{light(1, "新名字")}))

	nodes, err := store.ListNodes(ctx)
	require.NoError(t, err)
	require.Len(t, nodes, 2)
	assert.Equal(t, "新名字", nodes[0].Name)
	assert.Equal(t, int64(2), nodes[1].ID)

	n, err := store.GetNode(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "新名字", n.Name)
}

func TestNodes_ReplaceDropsMissing(t *testing.T) {
	ctx := context.Background()
	store := openTest(t).Nodes()

	require.NoError(t, store.SaveNodes(ctx, []topology.NodeInfo{light(1, "a"), light(2, "b"), light(3, "c")}))
	require.NoError(t, store.ReplaceNodes(ctx, []topology.NodeInfo{light(2, "b2"), light(7, "g")}))

	nodes, err := store.ListNodes(ctx)
	require.NoError(t, err)
	require.Len(t, nodes, 2)
	assert.Equal(t, int64(2), nodes[0].ID)
	assert.Equal(t, "b2", nodes[0].Name)
	assert.Equal(t, int64(7), nodes[1].ID)

	_, err = store.GetNode(ctx, 1)
	assert.ErrorIs(t, err, ErrNodeNotFound)

	require.NoError(t, store.ReplaceNodes(ctx, nil))
	nodes, err = store.ListNodes(ctx)
	require.NoError(t, err)
	assert.Empty(t, nodes)
}

func TestNodes_UnknownDeviceTypeSurvives(t *testing.T) {
	ctx := context.Background()
	store := openTest(t).Nodes()

	odd := light(5, "神秘设备")
	odd.DeviceType = topology.DeviceTypeUnknown
	require.NoError(t, store.SaveNodes(ctx, []topology.NodeInfo{odd}))

	n, err := store.GetNode(ctx, 5)
	require.NoError(t, err)
	assert.Equal(t, topology.DeviceTypeUnknown, n.DeviceType)
}

func TestNodes_GetMissingAndClear(t *testing.T) {
	ctx := context.Background()
	store := openTest(t).Nodes()

	_, err := store.GetNode(ctx, 42)
	assert.ErrorIs(t, err, ErrNodeNotFound)

	require.NoError(t, store.SaveNodes(ctx, []topology.NodeInfo{light(1, "a")}))
	require.NoError(t, store.ClearNodes(ctx))
	nodes, err := store.ListNodes(ctx)
	require.NoError(t, err)
	assert.Empty(t, nodes)

	assert.NoError(t, store.SaveNodes(ctx, nil))
}

func TestGateways_RememberAndLast(t *testing.T) {
	ctx := context.Background()
	database := openTest(t)

	clock := time.Unix(1700000000, 0)
	store := &gatewayStore{db: database, now: func() time.Time {
		clock = clock.Add(time.Second)
		return clock
	}}

	_, err := store.Last(ctx)
	assert.ErrorIs(t, err, ErrGatewayNotFound)

	require.NoError(t, store.Remember(ctx, "10.0.0.5", map[string]string{"ip": "10.0.0.5", "model": "gw"}))
	require.NoError(t, store.Remember(ctx, "10.0.0.6", nil))

	last, err := store.Last(ctx)
	require.NoError(t, err)
	assert.Equal(t, "10.0.0.6", last.IP)
	assert.Equal(t, map[string]string{"ip": "10.0.0.6"}, last.Info)

	require.NoError(t, store.Remember(ctx, "10.0.0.5", map[string]string{"ip": "10.0.0.5", "model": "gw2"}))
	last, err = store.Last(ctx)
	require.NoError(t, err)
	assert.Equal(t, "10.0.0.5", last.IP)
	assert.Equal(t, "gw2", last.Info["model"])

	all, err := store.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "10.0.0.6", all[1].IP)
}

func TestGateways_Forget(t *testing.T) {
	ctx := context.Background()
	store := openTest(t).Gateways()

	require.NoError(t, store.Remember(ctx, "10.0.0.5", nil))
	require.NoError(t, store.Forget(ctx, "10.0.0.5"))
	assert.ErrorIs(t, store.Forget(ctx, "10.0.0.5"), ErrGatewayNotFound)
}
