package metadata

import (
	"bytes"
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"storage-browser/domain"
	"storage-browser/domain/entitypath"
	"storage-browser/errors"
	"storage-browser/mocks"
)

func setup(t *testing.T) (*Client, *mocks.MockMetadataIndex, *httptest.Server) {
	t.Helper()
	index := mocks.NewMockMetadataIndex(gomock.NewController(t))
	log := logs.GetLoggerFromLevel(slog.LevelDebug)
	srv := httptest.NewServer(NewServer(index, log).Handler())
	t.Cleanup(srv.Close)
	return NewClient(srv.URL, srv.Client(), log), index, srv
}

func TestMetadata_List(t *testing.T) {
	req := require.New(t)
	client, index, _ := setup(t)
	records := []domain.Record{
		{ID: "1", Path: "docs/a b.pdf", SizeBytes: 3, MimeType: "application/pdf"},
	}
	index.EXPECT().List("docs/2024 q1").Return(records, nil)

	got, err := client.List(context.Background(), "docs/2024 q1")
	req.NoError(err)
	req.Equal(records, got)
}

func TestMetadata_Children(t *testing.T) {
	req := require.New(t)
	client, index, _ := setup(t)
	p, err := entitypath.FromRoute("s1", "docs/2024")
	req.NoError(err)
	index.EXPECT().List("docs/2024").Return([]domain.Record{}, nil)

	got, err := client.Children(context.Background(), p)
	req.NoError(err)
	req.Empty(got)
}

func TestMetadata_List_WireFormat(t *testing.T) {
	req := require.New(t)
	_, index, srv := setup(t)
	index.EXPECT().List("").Return([]domain.Record{{ID: "1", Path: "a.txt", SizeBytes: 1}}, nil)

	resp, err := srv.Client().Get(srv.URL + "/list")
	req.NoError(err)
	defer resp.Body.Close()
	var buf bytes.Buffer
	_, err = buf.ReadFrom(resp.Body)
	req.NoError(err)
	req.JSONEq(`[{"id":"1","path":"a.txt","sizeBytes":1,"deletedAt":null}]`, buf.String())
}

func TestMetadata_Generate(t *testing.T) {
	req := require.New(t)
	client, index, _ := setup(t)
	index.EXPECT().Generate(gomock.Any()).Return(domain.GenerateReport{Added: 2, Deleted: 1}, nil)

	report, err := client.Generate(context.Background())
	req.NoError(err)
	req.Equal(domain.GenerateReport{Added: 2, Deleted: 1}, report)
}

func TestMetadata_Move(t *testing.T) {
	req := require.New(t)
	client, index, _ := setup(t)
	index.EXPECT().Move("id-1", "archive/a.txt").Return(domain.Record{ID: "id-1", Path: "archive/a.txt"}, nil)

	record, err := client.Move(context.Background(), "id-1", "archive/a.txt")
	req.NoError(err)
	req.Equal("archive/a.txt", record.Path)
}

func TestMetadata_Move_UnknownRecord(t *testing.T) {
	req := require.New(t)
	client, index, _ := setup(t)
	index.EXPECT().Move("nope", "a.txt").Return(domain.Record{}, errors.ErrRecordNotFound)

	_, err := client.Move(context.Background(), "nope", "a.txt")
	req.ErrorIs(err, errors.ErrRecordNotFound)
}

func TestMetadata_Move_Validation(t *testing.T) {
	req := require.New(t)
	client, index, srv := setup(t)

	_, err := client.Move(context.Background(), "id-1", "")
	req.ErrorIs(err, errors.ErrUnexpectedStatus, "an empty path never reaches the index")

	index.EXPECT().Move("id-1", "/abs").Return(domain.Record{}, errors.ErrPathParse)
	r, err := http.NewRequest(http.MethodPut, srv.URL+"/records/id-1/path", bytes.NewBufferString(`{"newPath":"/abs"}`))
	req.NoError(err)
	resp, err := srv.Client().Do(r)
	req.NoError(err)
	resp.Body.Close()
	req.Equal(http.StatusBadRequest, resp.StatusCode)
}

func TestMetadata_InternalError(t *testing.T) {
	req := require.New(t)
	client, index, _ := setup(t)
	index.EXPECT().Generate(gomock.Any()).Return(domain.GenerateReport{}, errors.ErrProxyCall)

	_, err := client.Generate(context.Background())
	req.ErrorIs(err, errors.ErrUnexpectedStatus)
	req.ErrorContains(err, "500")
}

func TestMetadata_WrongMethod(t *testing.T) {
	req := require.New(t)
	_, _, srv := setup(t)

	resp, err := srv.Client().Get(srv.URL + "/generate")
	req.NoError(err)
	resp.Body.Close()
	req.Equal(http.StatusMethodNotAllowed, resp.StatusCode)
}
