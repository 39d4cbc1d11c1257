package webapi

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/cccb/transferd/pkg/launcher"
	"github.com/cccb/transferd/pkg/notify"
	"github.com/cccb/transferd/pkg/tdb/model"
	"github.com/cccb/transferd/pkg/transfer"
	"github.com/cccb/transferd/pkg/tutil"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testWebSettings() *transfer.Settings {
	return &transfer.Settings{
		Environment:  transfer.EnvironmentGoogle,
		UploadBucket: "users-bucket",
		Secrets: transfer.CallbackSecrets{
			Token:         "the-shared-token",
			EncryptionKey: "8bytekey",
			CallbackURL:   "https://transfers.test/transfers/complete",
		},
		ProviderConfigs: map[transfer.Provider]transfer.ProviderConfig{
			transfer.ProviderDropbox: {
				InstanceNamePrefix: "worker",
				MachineType:        "n1-standard-1",
				SourceImage:        "worker-image",
				DiskSizeFactor:     2,
				MinDiskSizeGB:      10,
				CLIPath:            "gcloud",
				ProjectID:          "test-project",
				Zone:               "us-central1-a",
			},
		},
	}
}

func setupCompletionContext(t *testing.T, payload interface{}) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()

	body, err := json.Marshal(payload)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/transfers/complete", bytes.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)

	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func TestTransferComplete(t *testing.T) {
	_, stors := tutil.NewTestDB(t)
	user := tutil.CreateUser(t, stors, "owner@test.com", "owner-key", false)

	settings := testWebSettings()
	orchestrator := transfer.NewOrchestrator(settings, stors, launcher.NewMockLauncher())
	reconciler := transfer.NewReconciler(settings.Secrets, stors, notify.NewLogNotifier())
	controller := NewTransferCompleteController(reconciler)

	batch, err := orchestrator.StartUpload(context.Background(), transfer.ProviderDropbox, user, []transfer.UploadItem{
		{Path: "/files/f1.txt", SizeInBytes: 100},
	})
	require.NoError(t, err)

	token, err := transfer.EncryptToken("8bytekey", "the-shared-token")
	require.NoError(t, err)

	t.Run("ValidCallback", func(t *testing.T) {
		ctx, rec := setupCompletionContext(t, map[string]interface{}{
			"token":          token,
			"transfer_pk":    batch.Transfers[0].ID,
			"coordinator_pk": batch.Coordinator.ID,
			"success":        true,
		})

		require.NoError(t, controller.TransferComplete(ctx))
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "thanks")

		completed, err := stors.TransferStor.GetTransferByID(batch.Transfers[0].ID)
		require.NoError(t, err)
		assert.True(t, completed.Completed)
	})

	t.Run("SecondCallbackConflicts", func(t *testing.T) {
		ctx, _ := setupCompletionContext(t, map[string]interface{}{
			"token":          token,
			"transfer_pk":    batch.Transfers[0].ID,
			"coordinator_pk": batch.Coordinator.ID,
			"success":        false,
		})

		err := controller.TransferComplete(ctx)
		var httpErr *echo.HTTPError
		require.ErrorAs(t, err, &httpErr)
		assert.Equal(t, http.StatusConflict, httpErr.Code)
	})

	t.Run("BadTokenIsOpaque404", func(t *testing.T) {
		ctx, _ := setupCompletionContext(t, map[string]interface{}{
			"token":          "bm90LXRoZS10b2tlbg==",
			"transfer_pk":    batch.Transfers[0].ID,
			"coordinator_pk": batch.Coordinator.ID,
			"success":        true,
		})

		err := controller.TransferComplete(ctx)
		var httpErr *echo.HTTPError
		require.ErrorAs(t, err, &httpErr)
		assert.Equal(t, http.StatusNotFound, httpErr.Code)
	})

	t.Run("MissingFieldsAreBadRequest", func(t *testing.T) {
		ctx, _ := setupCompletionContext(t, map[string]interface{}{
			"token":       token,
			"transfer_pk": batch.Transfers[0].ID,
		})

		err := controller.TransferComplete(ctx)
		var httpErr *echo.HTTPError
		require.ErrorAs(t, err, &httpErr)
		assert.Equal(t, http.StatusBadRequest, httpErr.Code)
	})
}

func TestResourceControllerScoping(t *testing.T) {
	_, stors := tutil.NewTestDB(t)
	owner := tutil.CreateUser(t, stors, "owner@test.com", "owner-key", false)
	admin := tutil.CreateUser(t, stors, "admin@test.com", "admin-key", true)
	resource := tutil.CreateResource(t, stors, owner, "/files/f1.txt", 100)

	controller := NewResourceController(stors.ResourceStor)

	get := func(user *model.User, id string) (*httptest.ResponseRecorder, error) {
		e := echo.New()
		req := httptest.NewRequest(http.MethodGet, "/api/resources/"+id, nil)
		rec := httptest.NewRecorder()
		ctx := e.NewContext(req, rec)
		ctx.SetParamNames("id")
		ctx.SetParamValues(id)
		ctx.Set("User", *user)
		return rec, controller.GetResource(ctx)
	}

	resourceID := strconv.Itoa(resource.ID)

	rec, err := get(owner, resourceID)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), resource.Path)

	// Foreign resources 404 rather than 403 for non-admins.
	other := tutil.CreateUser(t, stors, "other@test.com", "other-key", false)
	_, err = get(other, resourceID)
	assert.Equal(t, echo.ErrNotFound, err)

	rec, err = get(admin, resourceID)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, rec.Code)
}
