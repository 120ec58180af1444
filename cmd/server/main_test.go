package main

import (
	"context"
	"testing"

	"github.com/gofrs/uuid/v5"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/and161185/contact-keeper/internal/config"
)

func Test_newLogger(t *testing.T) {
	for _, dev := range []bool{false, true} {
		l := newLogger(dev)
		require.NotNil(t, l)
		l.Info("logger ready")
	}
}

func Test_openStore_Memory(t *testing.T) {
	cfg := &config.Config{Store: config.StoreMemory}
	st, err := openStore(context.Background(), cfg, zaptest.NewLogger(t))
	require.NoError(t, err)
	defer st.close()

	require.NoError(t, st.pinger.Ping(context.Background()))
	list, err := st.contacts.List(context.Background(), uuid.Must(uuid.NewV4()))
	require.NoError(t, err)
	require.Empty(t, list)
}
