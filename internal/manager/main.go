package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"mime/multipart"
	"net/http"
	"os"
	"path"
	"strings"
	"time"

	"cloud.google.com/go/pubsub/v2"
	"cloud.google.com/go/storage"
	"github.com/c2h5oh/datasize"
	"github.com/google/uuid"

	"github.com/ntdkhiem/hzip/compression"
	"github.com/ntdkhiem/hzip/internal/common"
)

type Application struct {
	GCSClient         common.GCSClientInterface
	PUBSUBClient      common.PubSubClientInterface
	CTX               *context.Context
	Bucket            string
	CompressTopicID   string
	DecompressTopicID string
	MaxUploadSize     int64
	GCSTimeout        time.Duration
}

// receiveFile reads the "file" form field under the upload size limit. It
// writes the error response itself and returns ok=false on failure.
func (app *Application) receiveFile(w http.ResponseWriter, r *http.Request) (multipart.File, *multipart.FileHeader, bool) {
	if r.Method != http.MethodPost {
		common.WriteError(w, "Only POST method allowed", http.StatusMethodNotAllowed)
		return nil, nil, false
	}

	r.Body = http.MaxBytesReader(w, r.Body, app.MaxUploadSize)

	file, header, err := r.FormFile("file")
	if err != nil {
		slog.Error("Failed to get file from form", "error", err)
		// This error is triggered when MaxBytesReader limit is exceeded
		if strings.Contains(err.Error(), "request body too large") {
			common.WriteError(w, "File exceeds size limit", http.StatusRequestEntityTooLarge)
			return nil, nil, false
		}
		common.WriteError(w, "Failed to read file: "+err.Error(), http.StatusBadRequest)
		return nil, nil, false
	}
	return file, header, true
}

func (app *Application) publish(jobID, topicID string, message any) error {
	messageBytes, err := json.Marshal(message)
	if err != nil {
		return fmt.Errorf("failed to marshal MQ message: %w", err)
	}
	returnedMessageID, err := app.PUBSUBClient.PublishMessage(*app.CTX, topicID, &pubsub.Message{
		Data: messageBytes,
	})
	if err != nil {
		return fmt.Errorf("failed to send MQ message: %w", err)
	}
	slog.Debug("Sent message to Pub/Sub", "job", jobID, "server_generated_message_id", returnedMessageID)
	return nil
}

func (app *Application) compressHandler(w http.ResponseWriter, r *http.Request) {
	file, header, ok := app.receiveFile(w, r)
	if !ok {
		return
	}
	defer file.Close()

	if header.Size == 0 {
		common.WriteError(w, "Nothing to compress: file is empty", http.StatusBadRequest)
		return
	}

	slog.Info("Processing a request for compressing")

	jobID := uuid.New().String()
	fileName := path.Base(header.Filename)
	slog.Debug("Creating new job", "job", jobID, "file", fileName, "size", datasize.ByteSize(header.Size).HumanReadable())

	ctx, cancel := context.WithTimeout(*app.CTX, app.GCSTimeout)
	defer cancel()

	// digest the upload while streaming it to GCS
	body := common.NewChecksumReader(file)
	originalFilePath := fmt.Sprintf("%s/original_%s", jobID, fileName)
	if err := app.upload(ctx, originalFilePath, body); err != nil {
		slog.Error("Failed to stream data to GCS", "job", jobID, "error", err)
		common.WriteError(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	slog.Debug(fmt.Sprintf("Uploaded %s to GCS", fileName), "job", jobID, "checksum", body.Sum())

	message := common.CompressedMsgSchema{
		UID:              jobID,
		OriginalFilePath: originalFilePath,
		FileName:         fileName,
		Checksum:         body.Sum(),
	}
	if err := app.publish(jobID, app.CompressTopicID, message); err != nil {
		slog.Error("Failed to publish compress job", "job", jobID, "error", err)
		common.WriteError(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	common.WriteJSON(w, map[string]string{"job_id": jobID}, http.StatusAccepted)
}

func (app *Application) decompressHandler(w http.ResponseWriter, r *http.Request) {
	file, header, ok := app.receiveFile(w, r)
	if !ok {
		return
	}
	defer file.Close()

	fileName := path.Base(header.Filename)
	if !strings.HasSuffix(fileName, compression.Extension) || fileName == compression.Extension {
		common.WriteError(w, "Wrong file format", http.StatusBadRequest)
		return
	}

	slog.Info("Processing a request for decompressing")

	jobID := uuid.New().String()
	slog.Debug("Creating new job", "job", jobID, "file", fileName, "size", datasize.ByteSize(header.Size).HumanReadable())

	ctx, cancel := context.WithTimeout(*app.CTX, app.GCSTimeout)
	defer cancel()

	compressedFilePath := fmt.Sprintf("%s/%s", jobID, fileName)
	if err := app.upload(ctx, compressedFilePath, file); err != nil {
		slog.Error("Failed to stream compressed data to GCS", "job", jobID, "error", err)
		common.WriteError(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	slog.Debug(fmt.Sprintf("Uploaded %s to GCS", fileName), "job", jobID)

	message := common.DecompressedMsgSchema{
		UID:                jobID,
		CompressedFilePath: compressedFilePath,
		FileName:           fileName,
	}
	if err := app.publish(jobID, app.DecompressTopicID, message); err != nil {
		slog.Error("Failed to publish decompress job", "job", jobID, "error", err)
		common.WriteError(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	common.WriteJSON(w, map[string]string{"job_id": jobID}, http.StatusAccepted)
}

func (app *Application) healthHandler(w http.ResponseWriter, r *http.Request) {
	common.WriteJSON(w, map[string]bool{"ok": true}, http.StatusOK)
}

func (app *Application) routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/compress", app.compressHandler)
	mux.HandleFunc("/decompress", app.decompressHandler)
	mux.HandleFunc("/healthz", app.healthHandler)
	return mux
}

func main() {
	common.InitLogger(os.Stdout, true)

	// initialize GCP services
	projectID := os.Getenv("GCP_PROJECT_ID")
	compressTopicID := os.Getenv("PUBSUB_COMPRESS_TOPIC_ID")
	decompressTopicID := os.Getenv("PUBSUB_DECOMPRESS_TOPIC_ID")
	bucket := os.Getenv("GCS_BUCKET")
	port := common.EnvOr("PORT", "8081")

	maxUploadSize, err := common.EnvSize("MAX_UPLOAD_SIZE", datasize.GB)
	if err != nil {
		slog.Error("Invalid configuration", "error", err)
		return
	}
	gcsTimeout, err := common.EnvDuration("GCS_TIMEOUT", 50*time.Second)
	if err != nil {
		slog.Error("Invalid configuration", "error", err)
		return
	}

	ctx := context.Background()

	GCSClient, err := storage.NewClient(ctx)
	if err != nil {
		slog.Error("Cannot create new client for GCS", "error", err)
		return
	}
	defer GCSClient.Close()
	slog.Debug("Initialized a GCS client.")

	PUBSUBClient, err := pubsub.NewClient(ctx, projectID)
	if err != nil {
		slog.Error("Cannot create new client for Pub/Sub", "error", err)
		return
	}
	defer PUBSUBClient.Close()
	slog.Debug("Initialized a Pub/Sub client.")

	app := Application{
		GCSClient:         &common.RealGCSClient{Client: GCSClient},
		PUBSUBClient:      &common.RealPubSubClient{Client: PUBSUBClient},
		CTX:               &ctx,
		Bucket:            bucket,
		CompressTopicID:   compressTopicID,
		DecompressTopicID: decompressTopicID,
		MaxUploadSize:     int64(maxUploadSize.Bytes()),
		GCSTimeout:        gcsTimeout,
	}

	slog.Info("Listening...", "port", port, "max_upload_size", maxUploadSize.HumanReadable())
	if err := http.ListenAndServe(":"+port, app.routes()); err != nil {
		slog.Error("Server stopped", "error", err)
	}
}
