package main

import (
	"context"
	"io"
)

// upload copies r into object and commits it. The object only exists once
// Close succeeds.
func (app *Application) upload(ctx context.Context, object string, r io.Reader) error {
	wc := app.GCSClient.NewObjectWriter(ctx, app.Bucket, object)
	if _, err := io.Copy(wc, r); err != nil {
		wc.Close()
		return err
	}
	return wc.Close()
}
