package httpapi

import (
	"bytes"
	"embed"
	"errors"
	"html/template"
	"log"
	"net/http"
	"strconv"
	"strings"

	"jwfoods/api/internal/db"
	"jwfoods/api/internal/store"
)

//go:embed templates/*.html
var templatesFS embed.FS

var templates = template.Must(template.ParseFS(templatesFS, "templates/*.html"))

func (a *App) render(w http.ResponseWriter, name string, data any) {
	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, name, data); err != nil {
		log.Printf("render %s: %v", name, err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = buf.WriteTo(w)
}

func (a *App) handleIndex(w http.ResponseWriter, r *http.Request) {
	a.render(w, "index.html", nil)
}

type dashboardData struct {
	Flash        *flashNotice
	Coefficients *store.Coefficients
	Calculations []store.Calculation
	Contacts     []store.Contact
	Defaults     store.Coefficients
}

// handleAdminDashboard renders the coefficients form plus the ten most
// recent calculations and contacts. Persistence errors degrade to an
// empty dashboard with a warning notice instead of a 500.
func (a *App) handleAdminDashboard(w http.ResponseWriter, r *http.Request) {
	data := dashboardData{
		Defaults: store.Coefficients{
			DistanceCoefficient: db.DefaultDistanceCoefficient,
			WeightCoefficient:   db.DefaultWeightCoefficient,
			BaseCost:            db.DefaultBaseCost,
		},
	}
	if notice, ok := a.popFlash(w, r); ok {
		data.Flash = &notice
	}

	loadErr := false
	coeffs, err := a.store.CurrentCoefficients(r.Context())
	switch {
	case err == nil:
		data.Coefficients = &coeffs
	case !errors.Is(err, store.ErrNotConfigured):
		log.Printf("admin dashboard: %v", err)
		loadErr = true
	}

	if data.Calculations, err = a.store.RecentCalculations(r.Context(), 10); err != nil {
		log.Printf("admin dashboard: %v", err)
		data.Calculations = nil
		loadErr = true
	}
	if data.Contacts, err = a.store.RecentContacts(r.Context(), 10); err != nil {
		log.Printf("admin dashboard: %v", err)
		data.Contacts = nil
		loadErr = true
	}
	if loadErr && data.Flash == nil {
		data.Flash = &flashNotice{Kind: flashWarning, Message: "Error loading dashboard data. Please ensure the database is initialized."}
	}

	a.render(w, "admin.html", data)
}

func formFloat(r *http.Request, key string, fallback float64) (float64, error) {
	raw := strings.TrimSpace(r.FormValue(key))
	if raw == "" {
		return fallback, nil
	}
	return strconv.ParseFloat(raw, 64)
}

func (a *App) handleAdminUpdateCoefficients(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		a.setFlash(w, flashError, "Please enter valid numeric values")
		http.Redirect(w, r, "/admin", http.StatusSeeOther)
		return
	}

	distanceCoeff, err1 := formFloat(r, "distance_coefficient", db.DefaultDistanceCoefficient)
	weightCoeff, err2 := formFloat(r, "weight_coefficient", db.DefaultWeightCoefficient)
	baseCost, err3 := formFloat(r, "base_cost", db.DefaultBaseCost)
	if err1 != nil || err2 != nil || err3 != nil {
		a.setFlash(w, flashError, "Please enter valid numeric values")
		http.Redirect(w, r, "/admin", http.StatusSeeOther)
		return
	}

	if distanceCoeff < 0 || weightCoeff < 0 || baseCost < 0 {
		a.setFlash(w, flashError, "All coefficients must be positive values")
		http.Redirect(w, r, "/admin", http.StatusSeeOther)
		return
	}

	if _, err := a.store.UpdateCoefficients(r.Context(), distanceCoeff, weightCoeff, baseCost); err != nil {
		log.Printf("update coefficients: %v", err)
		a.setFlash(w, flashError, "Error updating coefficients")
		http.Redirect(w, r, "/admin", http.StatusSeeOther)
		return
	}

	a.setFlash(w, flashSuccess, "Coefficients updated successfully!")
	http.Redirect(w, r, "/admin", http.StatusSeeOther)
}

func parsePage(r *http.Request) int {
	page, err := strconv.Atoi(r.URL.Query().Get("page"))
	if err != nil || page < 1 {
		return 1
	}
	return page
}

type calculationsData struct {
	Flash *flashNotice
	Page  store.Page[store.Calculation]
}

func (a *App) handleAdminCalculations(w http.ResponseWriter, r *http.Request) {
	data := calculationsData{}
	if notice, ok := a.popFlash(w, r); ok {
		data.Flash = &notice
	}

	page, err := a.store.ListCalculations(r.Context(), parsePage(r))
	if err != nil {
		log.Printf("admin calculations: %v", err)
		data.Flash = &flashNotice{Kind: flashWarning, Message: "Error loading calculations data. Please ensure the database is initialized."}
		page.Items = nil
	}
	data.Page = page

	a.render(w, "calculations.html", data)
}

type contactsData struct {
	Flash *flashNotice
	Page  store.Page[store.Contact]
}

func (a *App) handleAdminContacts(w http.ResponseWriter, r *http.Request) {
	data := contactsData{}
	if notice, ok := a.popFlash(w, r); ok {
		data.Flash = &notice
	}

	page, err := a.store.ListContacts(r.Context(), parsePage(r))
	if err != nil {
		log.Printf("admin contacts: %v", err)
		data.Flash = &flashNotice{Kind: flashWarning, Message: "Error loading contacts data. Please ensure the database is initialized."}
		page.Items = nil
	}
	data.Page = page

	a.render(w, "contacts.html", data)
}
