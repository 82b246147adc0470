// Copyright 2024-2025 NetCracker Technology Corporation
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"context"
	"net/http"
	"runtime/debug"
	"time"

	"github.com/Netcracker/qubership-autonet-service/client"
	"github.com/Netcracker/qubership-autonet-service/controller"
	"github.com/Netcracker/qubership-autonet-service/db"
	"github.com/Netcracker/qubership-autonet-service/repository"
	"github.com/Netcracker/qubership-autonet-service/security"
	"github.com/Netcracker/qubership-autonet-service/service"
	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
)

func init() {
	log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
}

func main() {
	readyChan := make(chan bool)
	systemInfoService, err := service.NewSystemInfoService()
	if err != nil {
		panic(err)
	}
	setLogLevel(systemInfoService.GetLogLevel())

	analysisClient, err := client.NewAnalysisClient(systemInfoService.GetAnalyzerConfig())
	if err != nil {
		log.Fatalf("Failed to create analysis client: %s", err.Error())
	}

	sessionStore, err := makeSessionStore(systemInfoService)
	if err != nil {
		log.Fatalf("Failed to create session store: %s", err.Error())
	}

	var historyRepository repository.AnalysisHistoryRepository
	if systemInfoService.IsHistoryEnabled() {
		cp := db.NewConnectionProvider(systemInfoService.GetDbCredentials())
		defer cp.Close()
		historyRepository = repository.NewAnalysisHistoryRepository(cp)
		if err := historyRepository.EnsureSchema(context.Background()); err != nil {
			log.Fatalf("Failed to prepare analysis history schema: %s", err.Error())
		}
		service.NewCleanupService(historyRepository, systemInfoService.GetHistoryRetention()).StartPeriodicCleanup(context.Background())
	} else {
		log.Info("POSTGRES_HOST is not set, analysis history is disabled")
	}

	if err := security.SetupGoGuardian(systemInfoService.GetApiKeys(), systemInfoService.GetSessionSecret(), systemInfoService.GetSessionTTL()); err != nil {
		log.Fatalf("Failed to setup authentication: %s", err.Error())
	}

	historyService := service.NewAnalysisHistoryService(historyRepository)
	inputService := service.NewInputService(sessionStore)
	disclaimerGate := service.NewDisclaimerGate(sessionStore)
	analysisService := service.NewAnalysisService(sessionStore, analysisClient, historyService)
	resultsService := service.NewResultsService(sessionStore, analysisService, disclaimerGate)
	sessionService := service.NewSessionService(inputService, analysisService, resultsService, disclaimerGate)

	sessionController := controller.NewSessionController(sessionService)
	inputController := controller.NewInputController(inputService, sessionService, systemInfoService.GetMaxUploadSize())
	analysisController := controller.NewAnalysisController(inputService, analysisService, sessionService, historyService)
	resultsController := controller.NewResultsController(resultsService, disclaimerGate, sessionService)
	healthController := controller.NewHealthController(readyChan)

	router := mux.NewRouter()
	router.HandleFunc("/api/v1/session", security.Secure(sessionController.GetSession)).Methods(http.MethodGet)

	router.HandleFunc("/api/v1/input/mode", security.Secure(inputController.SetMode)).Methods(http.MethodPut)
	router.HandleFunc("/api/v1/input/file", security.Secure(inputController.UploadFile)).Methods(http.MethodPost)
	router.HandleFunc("/api/v1/input/text", security.Secure(inputController.SetText)).Methods(http.MethodPut)

	router.HandleFunc("/api/v1/analysis", security.Secure(analysisController.Submit)).Methods(http.MethodPost)
	router.HandleFunc("/api/v1/analysis/reset", security.Secure(analysisController.Reset)).Methods(http.MethodPost)
	router.HandleFunc("/api/v1/history", security.Secure(analysisController.GetHistory)).Methods(http.MethodGet)

	router.HandleFunc("/api/v1/disclaimer", security.Secure(resultsController.SetAcknowledgement)).Methods(http.MethodPut)
	router.HandleFunc("/api/v1/results/sections/{section}/toggle", security.Secure(resultsController.ToggleSection)).Methods(http.MethodPost)
	router.HandleFunc("/api/v1/results/sketch/zoom/{direction:in|out}", security.Secure(resultsController.Zoom)).Methods(http.MethodPost)
	router.HandleFunc("/api/v1/results/sketch/download", security.Secure(resultsController.DownloadSketch)).Methods(http.MethodGet)
	router.HandleFunc("/api/v1/results/configs/{index}/copy", security.Secure(resultsController.CopyConfig)).Methods(http.MethodPost)
	router.HandleFunc("/api/v1/results/configs/{index}/download", security.Secure(resultsController.DownloadConfig)).Methods(http.MethodGet)
	router.HandleFunc("/api/v1/results/playbook/copy", security.Secure(resultsController.CopyPlaybook)).Methods(http.MethodPost)
	router.HandleFunc("/api/v1/results/playbook/download", security.Secure(resultsController.DownloadPlaybook)).Methods(http.MethodGet)

	router.HandleFunc("/live", security.NoSecure(healthController.HandleLiveRequest)).Methods(http.MethodGet)
	router.HandleFunc("/ready", security.NoSecure(healthController.HandleReadyRequest)).Methods(http.MethodGet)
	readyChan <- true
	close(readyChan)

	debug.SetGCPercent(30)

	srv := makeServer(systemInfoService, router)
	log.Fatalf("%v", srv.ListenAndServe())
}

func setLogLevel(level string) {
	logLevel, err := log.ParseLevel(level)
	if err != nil {
		log.Warnf("Unknown log level '%s', using info", level)
		logLevel = log.InfoLevel
	}
	log.SetLevel(logLevel)
}

func makeSessionStore(systemInfoService service.SystemInfoService) (repository.SessionStore, error) {
	ttl := systemInfoService.GetSessionTTL()
	if systemInfoService.GetSessionStore() == service.SessionStoreOlric {
		op, err := client.NewOlricProvider(systemInfoService.GetOlricConfig())
		if err != nil {
			return nil, err
		}
		log.Infof("Session store: olric, bind addr = %s", op.GetBindAddr())
		return repository.NewOlricSessionStore(op, ttl)
	}
	log.Info("Session store: local")
	return repository.NewLocalSessionStore(ttl), nil
}

func makeServer(systemInfoService service.SystemInfoService, r *mux.Router) *http.Server {
	listenAddr := systemInfoService.GetListenAddress()

	log.Infof("Listen addr = %s", listenAddr)

	var corsOptions []handlers.CORSOption

	corsOptions = append(corsOptions, handlers.AllowedHeaders([]string{"Connection", "Accept-Encoding", "Content-Encoding", "X-Requested-With", "Content-Type", "Authorization", security.ApiKeyHeader}))

	allowedOrigin := systemInfoService.GetOriginAllowed()
	if allowedOrigin != "" {
		corsOptions = append(corsOptions, handlers.AllowedOrigins([]string{allowedOrigin}))
		corsOptions = append(corsOptions, handlers.AllowCredentials())
	}
	corsOptions = append(corsOptions, handlers.AllowedMethods([]string{"GET", "HEAD", "POST", "PUT", "OPTIONS"}))
	corsOptions = append(corsOptions, handlers.ExposedHeaders([]string{"Content-Disposition"}))

	return &http.Server{
		Handler:      handlers.CompressHandler(handlers.CORS(corsOptions...)(r)),
		Addr:         listenAddr,
		WriteTimeout: 600 * time.Second,
		ReadTimeout:  60 * time.Second,
	}
}
