// Copyright 2018 Fabian Wenzelmann
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/FabianWe/quadmosaic/web"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	serveAddr   string
	keepResults time.Duration

	serveCmd = &cobra.Command{
		Use:   "serve",
		Short: "Serve mosaics over HTTP",
		Long: `Start an HTTP server. POST /mosaic with a multipart form field "image"
returns the mosaic as PNG, GET /signatures returns the index as JSON.`,
		Args: cobra.NoArgs,
		RunE: runServe,
	}
)

func init() {
	addComposeFlags(serveCmd)
	serveCmd.Flags().StringVar(&serveAddr, "addr", ":8085", "address to listen on")
	serveCmd.Flags().DurationVar(&keepResults, "keep", 10*time.Minute, "how long created mosaics can be fetched again")
}

func runServe(cmd *cobra.Command, args []string) error {
	composer, err := newComposer()
	if err != nil {
		return err
	}
	storage := web.NewMemStorage()
	done := web.RunFilter(storage, keepResults, time.Minute)
	defer close(done)

	srv := &http.Server{
		Addr:              serveAddr,
		Handler:           web.NewRouter(web.NewContext(composer, storage)),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.WithError(err).Error("Shutdown failed")
		}
	}()

	log.WithFields(log.Fields{
		"addr":       serveAddr,
		"signatures": len(composer.Index),
	}).Info("Listening")
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	log.Info("Server stopped")
	return nil
}
