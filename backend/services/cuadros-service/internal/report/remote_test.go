package report

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"inspecciones/backend/services/cuadros-service/internal/models"
)

func TestRemoteGenerator(t *testing.T) {
	var got remoteRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/informes/aislamientos", r.URL.Path)
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/pdf")
		_, _ = w.Write([]byte("%PDF-1.4"))
	}))
	defer srv.Close()

	aisl := 250.0
	gen := NewRemoteGenerator(srv.URL, time.Second, zap.NewNop())
	doc, err := gen.Generate(context.Background(), Input{
		Kind:        KindAislamientos,
		Centro:      models.Centro{Nombre: "Polideportivo", Provincia: "Valencia"},
		GeneratedAt: time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC),
		Cuadros:     []models.Cuadro{{Tipo: models.TipoCT, Numero: 4, Nombre: "Pista", AislamientoMegaohmnios: &aisl}},
	})
	require.NoError(t, err)

	assert.Equal(t, "application/pdf", doc.ContentType)
	assert.Equal(t, "aislamientos-polideportivo-20240315.pdf", doc.Filename)
	assert.Equal(t, []byte("%PDF-1.4"), doc.Body)
	assert.Equal(t, "Polideportivo", got.Centro)
	assert.Equal(t, "MΩ", got.Unidad)
	require.Len(t, got.Cuadros, 1)
	assert.Equal(t, 250.0, got.Cuadros[0].Medida)
}

func TestRemoteGeneratorHonoursDisposition(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", ContentTypeXLSX)
		w.Header().Set("Content-Disposition", `attachment; filename="informe.xlsx"`)
		_, _ = w.Write([]byte("xlsx"))
	}))
	defer srv.Close()

	doc, err := NewRemoteGenerator(srv.URL, time.Second, zap.NewNop()).Generate(context.Background(), Input{Kind: KindTierras})
	require.NoError(t, err)
	assert.Equal(t, "informe.xlsx", doc.Filename)
}

func TestRemoteGeneratorErrorIsNotRetried(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.Error(w, "boom", http.StatusBadGateway)
	}))
	defer srv.Close()

	_, err := NewRemoteGenerator(srv.URL, time.Second, zap.NewNop()).Generate(context.Background(), Input{Kind: KindTierras})
	assert.Error(t, err)
	assert.Equal(t, int32(1), calls.Load())
}

func TestRemoteGeneratorTimeoutIsNotRetried(t *testing.T) {
	var calls atomic.Int32
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	_, err := NewRemoteGenerator(srv.URL, 50*time.Millisecond, zap.NewNop()).Generate(context.Background(), Input{Kind: KindTierras})
	assert.Error(t, err)
	assert.Equal(t, int32(1), calls.Load())
}
