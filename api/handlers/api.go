package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/ceylonara/ceylonara-api/api"
	"github.com/ceylonara/ceylonara-api/api/scheduler"
	"github.com/ceylonara/ceylonara-api/config"
	"github.com/ceylonara/ceylonara-api/databases"
	"github.com/ceylonara/ceylonara-api/models"
)

var validate = validator.New()

// App stores the router and db connection, so it can be reused
type App struct {
	Router    *mux.Router
	Config    config.Config
	Scheduler *scheduler.Scheduler
	dbHelper  databases.DatabaseHelper
}

// New creates a new mux router and all the routes
func (a *App) New() *mux.Router {
	// setup go-guardian for middleware
	g := api.Guard{JWTSecret: a.Config.JWTSecret, IntrospectURL: a.Config.IntrospectURL}
	g.SetupGoGuardian()

	r := mux.NewRouter()

	factoryDB := databases.NewFactoryDatabase(a.dbHelper)
	farmerDB := databases.NewFarmerDatabase(a.dbHelper)
	userDB := databases.NewUserDatabase(a.dbHelper)
	notificationDB := databases.NewNotificationDatabase(a.dbHelper)

	f := Factory{DB: factoryDB, UDB: userDB}
	farm := Farmer{DB: farmerDB, UDB: userDB}
	p := Price{DB: databases.NewPriceDatabase(a.dbHelper), FDB: factoryDB, ADB: databases.NewAveragePriceDatabase(a.dbHelper)}
	avg := AveragePrice{DB: databases.NewAveragePriceDatabase(a.dbHelper)}
	ann := Announcement{DB: databases.NewAnnouncementDatabase(a.dbHelper), FDB: factoryDB}
	cr := CollectionRequest{DB: databases.NewCollectionRequestDatabase(a.dbHelper), FDB: factoryDB, FarmDB: farmerDB, NDB: notificationDB}
	chat := DirectChat{DB: databases.NewDirectChatDatabase(a.dbHelper), FDB: factoryDB, FarmDB: farmerDB, NDB: notificationDB, UploadDir: a.Config.UploadDir}
	n := Notification{DB: notificationDB}
	e := Estate{DB: databases.NewEstateDatabase(a.dbHelper)}
	d := Disease{PythonBin: a.Config.PythonBin, ScriptPath: a.Config.DiseaseScript, UploadDir: a.Config.UploadDir}

	// healthchex
	r.HandleFunc("/health", healthCheckHandler)

	apiCreate := r.PathPrefix("/api").Subrouter()

	// public, no auth: the regulator floor is published information
	apiCreate.Handle("/tea-prices/average", http.HandlerFunc(avg.LookupAveragePriceHandler)).Methods("GET")

	apiCreate.Handle("/factory", api.Middleware(http.HandlerFunc(f.RegisterFactoryHandler))).Methods("POST")
	apiCreate.Handle("/factory/profile", api.Middleware(http.HandlerFunc(f.FactoryProfileHandler))).Methods("GET")
	apiCreate.Handle("/factories", api.Middleware(http.HandlerFunc(f.FactoriesHandler))).Methods("GET")

	apiCreate.Handle("/farmer", api.Middleware(http.HandlerFunc(farm.RegisterFarmerHandler))).Methods("POST")
	apiCreate.Handle("/farmer/profile", api.Middleware(http.HandlerFunc(farm.FarmerProfileHandler))).Methods("GET")

	apiCreate.Handle("/factory/price", api.Middleware(http.HandlerFunc(p.SetPriceHandler))).Methods("POST")
	apiCreate.Handle("/factory/price", api.Middleware(http.HandlerFunc(p.OwnPriceHandler))).Methods("GET")
	apiCreate.Handle("/prices", api.Middleware(http.HandlerFunc(p.PricesHandler))).Methods("GET")

	apiCreate.Handle("/admin/average-price", api.Middleware(http.HandlerFunc(avg.SetAveragePriceHandler))).Methods("POST")
	apiCreate.Handle("/admin/average-prices", api.Middleware(http.HandlerFunc(avg.AveragePriceHistoryHandler))).Methods("GET")

	apiCreate.Handle("/announcements", api.Middleware(http.HandlerFunc(ann.AnnouncementsHandler))).Methods("GET")
	apiCreate.Handle("/factory/announcements", api.Middleware(http.HandlerFunc(ann.CreateAnnouncementHandler))).Methods("POST")
	apiCreate.Handle("/factory/announcements/{announcement_id}", api.Middleware(http.HandlerFunc(ann.DeleteAnnouncementHandler))).Methods("DELETE")

	apiCreate.Handle("/collection-requests", api.Middleware(http.HandlerFunc(cr.CreateCollectionRequestHandler))).Methods("POST")
	apiCreate.Handle("/farmer/requests", api.Middleware(http.HandlerFunc(cr.FarmerRequestsHandler))).Methods("GET")
	apiCreate.Handle("/factory/requests", api.Middleware(http.HandlerFunc(cr.FactoryRequestsHandler))).Methods("GET")
	apiCreate.Handle("/factory/requests/{request_id}", api.Middleware(http.HandlerFunc(cr.UpdateRequestStatusHandler))).Methods("PUT")

	apiCreate.Handle("/direct-chats", api.Middleware(http.HandlerFunc(chat.CreateChatHandler))).Methods("POST")
	apiCreate.Handle("/direct-chats", api.Middleware(http.HandlerFunc(chat.ChatsHandler))).Methods("GET")
	apiCreate.Handle("/direct-chats/{chat_id}", api.Middleware(http.HandlerFunc(chat.ChatByIDHandler))).Methods("GET")
	apiCreate.Handle("/direct-chats/{chat_id}/messages", api.Middleware(http.HandlerFunc(chat.SendMessageHandler))).Methods("POST")
	apiCreate.Handle("/direct-chats/{chat_id}/file-messages", api.Middleware(http.HandlerFunc(chat.SendFileMessageHandler))).Methods("POST")
	apiCreate.Handle("/direct-chats/{chat_id}/read", api.Middleware(http.HandlerFunc(chat.MarkMessagesReadHandler))).Methods("PUT")
	apiCreate.Handle("/direct-chats/{chat_id}/messaging", api.Middleware(http.HandlerFunc(chat.ToggleMessagingHandler))).Methods("PUT")

	apiCreate.Handle("/notifications", api.Middleware(http.HandlerFunc(n.NotificationsHandler))).Methods("GET")
	apiCreate.Handle("/notifications/{notification_id}/read", api.Middleware(http.HandlerFunc(n.MarkNotificationReadHandler))).Methods("PUT")
	apiCreate.Handle("/notifications/{notification_id}", api.Middleware(http.HandlerFunc(n.DeleteNotificationHandler))).Methods("DELETE")

	apiCreate.Handle("/estate", api.Middleware(http.HandlerFunc(e.UpsertEstateHandler))).Methods("POST")
	apiCreate.Handle("/estate", api.Middleware(http.HandlerFunc(e.EstateHandler))).Methods("GET")
	apiCreate.Handle("/estate/plots", api.Middleware(http.HandlerFunc(e.AddPlotHandler))).Methods("POST")
	apiCreate.Handle("/estate/workers", api.Middleware(http.HandlerFunc(e.AddWorkerGroupHandler))).Methods("POST")
	apiCreate.Handle("/estate/workers/{worker_id}", api.Middleware(http.HandlerFunc(e.RemoveWorkerGroupHandler))).Methods("DELETE")
	apiCreate.Handle("/estate/equipment", api.Middleware(http.HandlerFunc(e.AddEquipmentHandler))).Methods("POST")
	apiCreate.Handle("/estate/equipment/{equipment_id}", api.Middleware(http.HandlerFunc(e.RemoveEquipmentHandler))).Methods("DELETE")
	apiCreate.Handle("/estate/production", api.Middleware(http.HandlerFunc(e.AddProductionHandler))).Methods("POST")
	apiCreate.Handle("/estate/financial", api.Middleware(http.HandlerFunc(e.UpdateFinancialHandler))).Methods("PUT")
	apiCreate.Handle("/estate/yield-prediction", api.Middleware(http.HandlerFunc(e.YieldPredictionHandler))).Methods("GET")

	apiCreate.Handle("/tea-disease/detect", api.TimeoutMiddleware(detectionTimeout)(api.Middleware(http.HandlerFunc(d.DetectHandler)))).Methods("POST")

	// uploaded chat files and detection images
	r.PathPrefix("/uploads/").Handler(http.StripPrefix("/uploads/", http.FileServer(http.Dir(a.Config.UploadDir))))
	return r
}

// Initialize is invoked by main to connect with the database and create a router
func (a *App) Initialize() error {

	client, err := databases.NewClient(&a.Config)
	if err != nil {
		// if we fail to create a new database client, then kill the pod
		zap.S().With(err).Error("failed to create new client")
		return err
	}

	a.dbHelper = databases.NewDatabase(&a.Config, client)
	err = client.Connect()
	if err != nil {
		// if we fail to connect to the database, then kill the pod
		zap.S().With(err).Error("failed to connect to database")
		return err
	}
	zap.S().Info("ceylonara-api has connected to the database")

	a.Scheduler = scheduler.New(
		databases.NewNotificationDatabase(a.dbHelper),
		databases.NewAveragePriceDatabase(a.dbHelper),
	)
	a.Scheduler.Start()

	// initialize api router
	a.initializeRoutes()
	return nil

}

func (a *App) initializeRoutes() {
	a.Router = a.New()
}

func healthCheckHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	b, _ := json.Marshal(models.HealthCheckResponse{
		Alive: true,
	})
	_, _ = io.WriteString(w, string(b))
}

// requestIdentity pulls the verified caller off the request context. Routes
// behind api.Middleware always have one; a miss means the route was wired
// without the middleware.
func requestIdentity(w http.ResponseWriter, r *http.Request) (api.Identity, bool) {
	id, ok := api.RequestIdentity(r)
	if !ok {
		config.ErrorStatus("missing caller identity", http.StatusUnauthorized, w, errors.New("no identity on request context"))
		return api.Identity{}, false
	}
	return id, true
}
