package routes

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/dcode-github/realestate_console/controllers"
	"github.com/dcode-github/realestate_console/middleware"
	"github.com/dcode-github/realestate_console/services"
	"github.com/dcode-github/realestate_console/storage"
)

type Deps struct {
	Properties *services.PropertyService
	Cities     *services.CityService
	Leads      *services.LeadService
	Auth       *services.AuthService
	Contact    *services.ContactService
	Cache      controllers.ReadCache

	UploadDir   string
	RequireAuth bool
}

func Routes(router *mux.Router, d Deps) {
	router.Use(middleware.RecoveryMiddleware, middleware.LoggingMiddleware)

	// Uploaded images; stored URLs are relative to this prefix.
	router.PathPrefix("/" + storage.URLPrefix + "/").Handler(
		http.StripPrefix("/"+storage.URLPrefix+"/", http.FileServer(http.Dir(d.UploadDir))))

	// Auth routes
	router.HandleFunc("/api/login", controllers.LoginUser(d.Auth)).Methods("POST")

	// Public site
	router.HandleFunc("/cities", controllers.GetCities(d.Cities, d.Cache)).Methods("GET")
	router.HandleFunc("/properties", controllers.GetAllProperties(d.Properties, d.Cache)).Methods("GET")
	router.HandleFunc("/properties/city/{cityName}", controllers.GetPropertiesByCity(d.Properties, d.Cache)).Methods("GET")
	router.HandleFunc("/properties/{id:[0-9]+}", controllers.GetProperty(d.Properties)).Methods("GET")
	router.HandleFunc("/enquiries", controllers.CreateEnquiry(d.Leads)).Methods("POST")
	router.HandleFunc("/schedule-visit", controllers.ScheduleVisit(d.Leads)).Methods("POST")
	router.HandleFunc("/selling-info", controllers.CreateSellingInfo(d.Leads)).Methods("POST")
	router.HandleFunc("/contact", controllers.SendContactMessage(d.Contact)).Methods("POST")
	router.HandleFunc("/sendEmail", controllers.SendContactMessage(d.Contact)).Methods("POST")

	// Admin console
	admin := router.NewRoute().Subrouter()
	if d.RequireAuth {
		admin.Use(middleware.AuthMiddleware)
	}

	// City routes
	admin.HandleFunc("/cities", controllers.CreateCity(d.Cities, d.Cache)).Methods("POST")
	admin.HandleFunc("/cities/{id:[0-9]+}", controllers.UpdateCity(d.Cities, d.Cache)).Methods("PUT")
	admin.HandleFunc("/cities", controllers.DeleteCities(d.Cities, d.Cache)).Methods("DELETE")
	admin.HandleFunc("/cities/count", controllers.CountCities(d.Cities)).Methods("GET")

	// Property routes
	admin.HandleFunc("/properties", controllers.CreateProperty(d.Properties, d.Cache)).Methods("POST")
	admin.HandleFunc("/properties/{id:[0-9]+}", controllers.UpdateProperty(d.Properties, d.Cache)).Methods("PUT")
	admin.HandleFunc("/properties", controllers.DeleteProperties(d.Properties, d.Cache)).Methods("DELETE")
	admin.HandleFunc("/properties/count", controllers.CountProperties(d.Properties)).Methods("GET")

	// Lead routes
	admin.HandleFunc("/enquiries", controllers.GetEnquiries(d.Leads)).Methods("GET")
	admin.HandleFunc("/enquiries/count", controllers.CountEnquiries(d.Leads)).Methods("GET")
	admin.HandleFunc("/enquiry", controllers.DeleteEnquiries(d.Leads)).Methods("DELETE")
	admin.HandleFunc("/enquiries", controllers.DeleteEnquiries(d.Leads)).Methods("DELETE")
	admin.HandleFunc("/schedules", controllers.GetSchedules(d.Leads)).Methods("GET")
	admin.HandleFunc("/schedules/count", controllers.CountSchedules(d.Leads)).Methods("GET")
	admin.HandleFunc("/schedules", controllers.DeleteSchedules(d.Leads)).Methods("DELETE")
	admin.HandleFunc("/selling-info", controllers.GetSellingInfo(d.Leads)).Methods("GET")
	admin.HandleFunc("/selling-info/count", controllers.CountSellingInfo(d.Leads)).Methods("GET")
	admin.HandleFunc("/selling-info", controllers.DeleteSellingInfo(d.Leads)).Methods("DELETE")
}
