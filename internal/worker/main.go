package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"cloud.google.com/go/pubsub/v2"
	"cloud.google.com/go/storage"
	"github.com/c2h5oh/datasize"

	"github.com/ntdkhiem/hzip/compression"
	"github.com/ntdkhiem/hzip/internal/common"
)

type Application struct {
	GCSClient  common.GCSClientInterface
	CTX        *context.Context
	Bucket     string
	GCSTimeout time.Duration
}

// isCorrupt reports whether err is a terminal codec failure. Redelivering
// the same bytes would fail the same way.
func isCorrupt(err error) bool {
	return errors.Is(err, compression.ErrTruncatedFile) ||
		errors.Is(err, compression.ErrMalformedTable) ||
		errors.Is(err, compression.ErrMalformedStream) ||
		errors.Is(err, compression.ErrMissingCode)
}

func (app *Application) download(ctx context.Context, object string) ([]byte, error) {
	r, err := app.GCSClient.NewObjectReader(ctx, app.Bucket, object)
	if err != nil {
		return nil, err
	}
	defer r.Close()
	return io.ReadAll(r)
}

func (app *Application) upload(ctx context.Context, object string, data []byte) error {
	wc := app.GCSClient.NewObjectWriter(ctx, app.Bucket, object)
	if _, err := io.Copy(wc, bytes.NewReader(data)); err != nil {
		wc.Close()
		return err
	}
	return wc.Close()
}

func (app *Application) compressMessageHandler(_ context.Context, msg common.MessageInterface) {
	var job common.CompressedMsgSchema
	if err := json.Unmarshal(msg.GetData(), &job); err != nil {
		slog.Error("Failed to unmarshal body from job message", "error", err)
		msg.Nack()
		return
	}

	slog.Info("Received job", "job", job.UID)

	ctx, cancel := context.WithTimeout(*app.CTX, app.GCSTimeout)
	defer cancel()

	ogFileBytes, err := app.download(ctx, job.OriginalFilePath)
	if err != nil {
		slog.Error("Failed to download original file from GCS", "job", job.UID, "error", err)
		msg.Nack()
		return
	}
	slog.Debug("Downloaded original file", "job", job.UID, "size", datasize.ByteSize(len(ogFileBytes)).HumanReadable())

	if job.Checksum != "" && common.Checksum(ogFileBytes) != job.Checksum {
		slog.Error("Checksum mismatch on original file", "job", job.UID, "expected", job.Checksum)
		msg.Nack()
		return
	}

	compressed, stats, err := compression.Compress(ogFileBytes)
	if errors.Is(err, compression.ErrEmptyInput) {
		slog.Info("Nothing to compress", "job", job.UID)
		msg.Ack()
		return
	}
	if err != nil {
		slog.Error("Failed to compress data", "job", job.UID, "error", err)
		msg.Ack()
		return
	}
	slog.Debug("Compressed data", "job", job.UID, "symbols", stats.Symbols, "ratio", stats.Ratio())

	compressedFilePath := fmt.Sprintf("%s/%s%s", job.UID, outputName(job.FileName, "file"), compression.Extension)
	if err := app.upload(ctx, compressedFilePath, compressed); err != nil {
		slog.Error("Failed to upload compressed data to GCS", "job", job.UID, "error", err)
		msg.Nack()
		return
	}
	slog.Debug("Uploaded compressed data to GCS", "job", job.UID, "path", compressedFilePath)

	msg.Ack()
	slog.Info("Completed processing job", "job", job.UID)
}

func (app *Application) decompressMessageHandler(_ context.Context, msg common.MessageInterface) {
	var job common.DecompressedMsgSchema
	if err := json.Unmarshal(msg.GetData(), &job); err != nil {
		slog.Error("Failed to unmarshal body from job message", "error", err)
		msg.Nack()
		return
	}

	slog.Info("Received job", "job", job.UID)

	ctx, cancel := context.WithTimeout(*app.CTX, app.GCSTimeout)
	defer cancel()

	fileBytes, err := app.download(ctx, job.CompressedFilePath)
	if err != nil {
		slog.Error("Failed to download compressed file from GCS", "job", job.UID, "error", err)
		msg.Nack()
		return
	}
	slog.Debug("Downloaded compressed file from GCS.", "job", job.UID)

	data, err := compression.Decompress(fileBytes)
	if err != nil {
		slog.Error("Failed to decompress data", "job", job.UID, "error", err, "corrupt", isCorrupt(err))
		// corrupt input never gets better on redelivery
		msg.Ack()
		return
	}

	name := strings.TrimSuffix(outputName(job.FileName, "file"+compression.Extension), compression.Extension)
	resultFilePath := fmt.Sprintf("%s/%s", job.UID, name)
	if err := app.upload(ctx, resultFilePath, data); err != nil {
		slog.Error("Failed to upload final data to GCS", "job", job.UID, "error", err)
		msg.Nack()
		return
	}
	slog.Debug("Uploaded final data to GCS", "job", job.UID, "path", resultFilePath)

	msg.Ack()
	slog.Info("Completed processing job", "job", job.UID)
}

func outputName(fileName, def string) string {
	if fileName == "" {
		return def
	}
	return fileName
}

func main() {
	methodFlag := flag.Bool("decompress", false, "flag to indicate this instance is for decompressing.")
	flag.Parse()

	common.InitLogger(os.Stdout, true)

	// initialize GCP services
	projectID := os.Getenv("GCP_PROJECT_ID")
	subID := os.Getenv("PUBSUB_SUB_ID")
	bucket := os.Getenv("GCS_BUCKET")
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
		GCSClient:  &common.RealGCSClient{Client: GCSClient},
		CTX:        &ctx,
		Bucket:     bucket,
		GCSTimeout: gcsTimeout,
	}

	sub := PUBSUBClient.Subscriber(subID)
	receiveFunc := func(ctx context.Context, msg *pubsub.Message) {
		wrappedMsg := &common.RealMessage{Msg: msg}
		if *methodFlag {
			app.decompressMessageHandler(ctx, wrappedMsg)
		} else {
			app.compressMessageHandler(ctx, wrappedMsg)
		}
	}

	if *methodFlag {
		slog.Info("Listening for a new decompressing message...")
	} else {
		slog.Info("Listening for a new compressing message...")
	}
	err = sub.Receive(ctx, receiveFunc)
	if err != nil && !errors.Is(err, context.Canceled) {
		slog.Error("Cannot process job", "error", err)
		return
	}
}
