package catalog

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/mensahub/mensahub/internal/shared"
	"github.com/mensahub/mensahub/internal/view"
)

// Handler wires the management pages for dishes and menus.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	templates *view.Engine
	csrf      *shared.CSRFManager
}

// NewHandler constructs a catalog handler.
func NewHandler(logger *slog.Logger, service *Service, templates *view.Engine, csrf *shared.CSRFManager) *Handler {
	return &Handler{logger: logger, service: service, templates: templates, csrf: csrf}
}

// MountRoutes registers the management routes. The caller is responsible for
// wrapping them in the role gate.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/dishes", h.listDishes)
	r.Get("/dishes/new", h.showAddDish)
	r.Post("/dishes", h.handleAddDish)
	r.Get("/dishes/{dishID}/edit", h.showEditDish)
	r.Post("/dishes/{dishID}", h.handleEditDish)
	r.Post("/dishes/{dishID}/delete", h.handleDeleteDish)

	r.Get("/menus", h.listMenus)
	r.Get("/menus/new", h.showAddMenu)
	r.Post("/menus", h.handleAddMenu)
	r.Get("/menus/{menuID}/edit", h.showEditMenu)
	r.Post("/menus/{menuID}", h.handleEditMenu)
	r.Post("/menus/{menuID}/delete", h.handleDeleteMenu)
}

type dishForm struct {
	Name            string
	Description     string
	NutritionalInfo string
}

type dishListPageData struct {
	Dishes []Dish
	Errors map[string]string
}

type dishFormPageData struct {
	FormTitle string
	Action    string
	Form      dishForm
	Errors    map[string]string
}

type menuForm struct {
	Date     string
	MealType string
	DishIDs  []int64
}

type menuListPageData struct {
	Menus  []Menu
	Errors map[string]string
}

type menuFormPageData struct {
	FormTitle string
	Action    string
	Form      menuForm
	AllDishes []Dish
	MealTypes []MealType
	Selected  map[int64]bool
	Errors    map[string]string
}

// --- dishes ---

func (h *Handler) listDishes(w http.ResponseWriter, r *http.Request) {
	data := dishListPageData{Errors: map[string]string{}}
	dishes, err := h.service.ListDishes(r.Context())
	if err != nil {
		h.logger.Error("list dishes", slog.Any("error", err))
		data.Errors["general"] = shared.UserSafeMessage(err)
	}
	data.Dishes = dishes
	h.render(w, r, "pages/dishes_list.html", "Dishes", data, http.StatusOK)
}

func (h *Handler) showAddDish(w http.ResponseWriter, r *http.Request) {
	data := dishFormPageData{FormTitle: "Add dish", Action: "/management/dishes", Errors: map[string]string{}}
	h.render(w, r, "pages/dish_form.html", "Add dish", data, http.StatusOK)
}

func (h *Handler) handleAddDish(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}
	form := dishForm{
		Name:            r.PostFormValue("name"),
		Description:     r.PostFormValue("description"),
		NutritionalInfo: r.PostFormValue("nutritional_info"),
	}

	_, err := h.service.CreateDish(r.Context(), form.Name, form.Description, form.NutritionalInfo)
	if err == nil {
		h.redirectWithFlash(w, r, "/management/dishes", "success", "Dish created.")
		return
	}

	data := dishFormPageData{FormTitle: "Add dish", Action: "/management/dishes", Form: form, Errors: map[string]string{}}
	switch {
	case errors.Is(err, shared.ErrValidation):
		data.Errors["Name"] = "The dish name is required."
	case errors.Is(err, shared.ErrConflict):
		data.Errors["Name"] = "A dish with this name already exists."
	default:
		h.logger.Error("create dish", slog.Any("error", err))
		data.Errors["general"] = shared.UserSafeMessage(err)
	}
	h.render(w, r, "pages/dish_form.html", "Add dish", data, http.StatusBadRequest)
}

func (h *Handler) showEditDish(w http.ResponseWriter, r *http.Request) {
	id, ok := h.paramID(w, r, "dishID")
	if !ok {
		return
	}
	dish, err := h.service.GetDish(r.Context(), id)
	if err != nil {
		h.respondError(w, r, err, "load dish")
		return
	}
	data := dishFormPageData{
		FormTitle: "Edit dish",
		Action:    "/management/dishes/" + strconv.FormatInt(id, 10),
		Form:      dishForm{Name: dish.Name, Description: dish.Description, NutritionalInfo: dish.NutritionalInfo},
		Errors:    map[string]string{},
	}
	h.render(w, r, "pages/dish_form.html", "Edit dish", data, http.StatusOK)
}

func (h *Handler) handleEditDish(w http.ResponseWriter, r *http.Request) {
	id, ok := h.paramID(w, r, "dishID")
	if !ok {
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}
	form := dishForm{
		Name:            r.PostFormValue("name"),
		Description:     r.PostFormValue("description"),
		NutritionalInfo: r.PostFormValue("nutritional_info"),
	}

	err := h.service.UpdateDish(r.Context(), id, form.Name, form.Description, form.NutritionalInfo)
	if err == nil {
		h.redirectWithFlash(w, r, "/management/dishes", "success", "Dish updated.")
		return
	}
	if errors.Is(err, shared.ErrNotFound) {
		h.respondError(w, r, err, "update dish")
		return
	}

	data := dishFormPageData{
		FormTitle: "Edit dish",
		Action:    "/management/dishes/" + strconv.FormatInt(id, 10),
		Form:      form,
		Errors:    map[string]string{},
	}
	switch {
	case errors.Is(err, shared.ErrValidation):
		data.Errors["Name"] = "The dish name is required."
	case errors.Is(err, shared.ErrConflict):
		data.Errors["Name"] = "A dish with this name already exists."
	default:
		h.logger.Error("update dish", slog.Any("error", err))
		data.Errors["general"] = shared.UserSafeMessage(err)
	}
	h.render(w, r, "pages/dish_form.html", "Edit dish", data, http.StatusBadRequest)
}

func (h *Handler) handleDeleteDish(w http.ResponseWriter, r *http.Request) {
	id, ok := h.paramID(w, r, "dishID")
	if !ok {
		return
	}
	err := h.service.DeleteDish(r.Context(), id)
	switch {
	case err == nil:
		h.redirectWithFlash(w, r, "/management/dishes", "success", "Dish removed.")
	case errors.Is(err, shared.ErrConflict):
		h.redirectWithFlash(w, r, "/management/dishes", "danger", "This dish cannot be removed because it belongs to one or more menus.")
	default:
		h.respondError(w, r, err, "delete dish")
	}
}

// --- menus ---

func (h *Handler) listMenus(w http.ResponseWriter, r *http.Request) {
	data := menuListPageData{Errors: map[string]string{}}
	menus, err := h.service.ListMenus(r.Context())
	if err != nil {
		h.logger.Error("list menus", slog.Any("error", err))
		data.Errors["general"] = shared.UserSafeMessage(err)
	}
	data.Menus = menus
	h.render(w, r, "pages/menus_list.html", "Menus", data, http.StatusOK)
}

func (h *Handler) showAddMenu(w http.ResponseWriter, r *http.Request) {
	data, err := h.menuFormData(r, "Create menu", "/management/menus", menuForm{}, nil)
	if err != nil {
		h.respondError(w, r, err, "load dishes for menu form")
		return
	}
	h.render(w, r, "pages/menu_form.html", "Create menu", data, http.StatusOK)
}

func (h *Handler) handleAddMenu(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}
	form := readMenuForm(r)
	input, formErrors := parseMenuForm(form)

	if len(formErrors) == 0 {
		_, err := h.service.CreateMenu(r.Context(), input)
		switch {
		case err == nil:
			h.redirectWithFlash(w, r, "/management/menus", "success", "Menu created.")
			return
		case errors.Is(err, shared.ErrValidation):
			formErrors["Dishes"] = "Select at least one existing dish."
		case errors.Is(err, shared.ErrConflict):
			formErrors["general"] = "A menu for this date and meal already exists."
		default:
			h.logger.Error("create menu", slog.Any("error", err))
			formErrors["general"] = shared.UserSafeMessage(err)
		}
	}

	data, err := h.menuFormData(r, "Create menu", "/management/menus", form, formErrors)
	if err != nil {
		h.respondError(w, r, err, "load dishes for menu form")
		return
	}
	h.render(w, r, "pages/menu_form.html", "Create menu", data, http.StatusBadRequest)
}

func (h *Handler) showEditMenu(w http.ResponseWriter, r *http.Request) {
	id, ok := h.paramID(w, r, "menuID")
	if !ok {
		return
	}
	menu, err := h.service.GetMenu(r.Context(), id)
	if err != nil {
		h.respondError(w, r, err, "load menu")
		return
	}
	form := menuForm{
		Date:     menu.Date.Format("2006-01-02"),
		MealType: menu.MealType.String(),
	}
	for _, dish := range menu.Dishes {
		form.DishIDs = append(form.DishIDs, dish.ID)
	}
	data, err := h.menuFormData(r, "Edit menu", "/management/menus/"+strconv.FormatInt(id, 10), form, nil)
	if err != nil {
		h.respondError(w, r, err, "load dishes for menu form")
		return
	}
	h.render(w, r, "pages/menu_form.html", "Edit menu", data, http.StatusOK)
}

func (h *Handler) handleEditMenu(w http.ResponseWriter, r *http.Request) {
	id, ok := h.paramID(w, r, "menuID")
	if !ok {
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}
	form := readMenuForm(r)
	input, formErrors := parseMenuForm(form)

	if len(formErrors) == 0 {
		err := h.service.UpdateMenu(r.Context(), id, input)
		switch {
		case err == nil:
			h.redirectWithFlash(w, r, "/management/menus", "success", "Menu updated.")
			return
		case errors.Is(err, shared.ErrNotFound):
			h.respondError(w, r, err, "update menu")
			return
		case errors.Is(err, shared.ErrValidation):
			formErrors["Dishes"] = "Select at least one existing dish."
		case errors.Is(err, shared.ErrConflict):
			formErrors["general"] = "A menu for this date and meal already exists."
		default:
			h.logger.Error("update menu", slog.Any("error", err))
			formErrors["general"] = shared.UserSafeMessage(err)
		}
	}

	data, err := h.menuFormData(r, "Edit menu", "/management/menus/"+strconv.FormatInt(id, 10), form, formErrors)
	if err != nil {
		h.respondError(w, r, err, "load dishes for menu form")
		return
	}
	h.render(w, r, "pages/menu_form.html", "Edit menu", data, http.StatusBadRequest)
}

func (h *Handler) handleDeleteMenu(w http.ResponseWriter, r *http.Request) {
	id, ok := h.paramID(w, r, "menuID")
	if !ok {
		return
	}
	if err := h.service.DeleteMenu(r.Context(), id); err != nil {
		h.respondError(w, r, err, "delete menu")
		return
	}
	h.redirectWithFlash(w, r, "/management/menus", "success", "Menu removed.")
}

// --- helpers ---

func readMenuForm(r *http.Request) menuForm {
	form := menuForm{
		Date:     r.PostFormValue("date"),
		MealType: r.PostFormValue("meal_type"),
	}
	for _, raw := range r.PostForm["dishes"] {
		if id, err := strconv.ParseInt(raw, 10, 64); err == nil {
			form.DishIDs = append(form.DishIDs, id)
		}
	}
	return form
}

func parseMenuForm(form menuForm) (MenuInput, map[string]string) {
	formErrors := map[string]string{}
	var input MenuInput

	if form.Date == "" {
		formErrors["Date"] = "The menu date is required."
	} else if date, err := time.Parse("2006-01-02", form.Date); err != nil {
		formErrors["Date"] = "The menu date is invalid."
	} else {
		input.Date = date
	}

	mealType, err := ParseMealType(form.MealType)
	if err != nil {
		formErrors["MealType"] = "Choose lunch or dinner."
	} else {
		input.MealType = mealType
	}

	if len(form.DishIDs) == 0 {
		formErrors["Dishes"] = "Select at least one dish."
	}
	input.DishIDs = form.DishIDs

	return input, formErrors
}

func (h *Handler) menuFormData(r *http.Request, title, action string, form menuForm, formErrors map[string]string) (menuFormPageData, error) {
	if formErrors == nil {
		formErrors = map[string]string{}
	}
	dishes, err := h.service.ListDishes(r.Context())
	if err != nil {
		return menuFormPageData{}, err
	}
	selected := make(map[int64]bool, len(form.DishIDs))
	for _, id := range form.DishIDs {
		selected[id] = true
	}
	return menuFormPageData{
		FormTitle: title,
		Action:    action,
		Form:      form,
		AllDishes: dishes,
		MealTypes: AllMealTypes(),
		Selected:  selected,
		Errors:    formErrors,
	}, nil
}

func (h *Handler) paramID(w http.ResponseWriter, r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || id <= 0 {
		h.respondError(w, r, shared.ErrNotFound, "parse id")
		return 0, false
	}
	return id, true
}

func (h *Handler) respondError(w http.ResponseWriter, r *http.Request, err error, op string) {
	if errors.Is(err, shared.ErrNotFound) {
		h.render(w, r, "pages/not_found.html", "Not found", nil, http.StatusNotFound)
		return
	}
	h.logger.Error(op, slog.Any("error", err))
	http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
}

// render builds the view data before the status line goes out, so session
// mutations made here still reach the commit-on-first-write wrapper.
func (h *Handler) render(w http.ResponseWriter, r *http.Request, template, title string, data any, status int) {
	sess := shared.SessionFromContext(r.Context())
	csrfToken, _ := h.csrf.EnsureToken(r.Context(), sess)
	var flash *shared.FlashMessage
	if sess != nil {
		flash = sess.PopFlash()
	}
	viewData := view.TemplateData{
		Title:       title,
		CSRFToken:   csrfToken,
		Flash:       flash,
		CurrentPath: r.URL.Path,
		Data:        data,
	}
	if status != http.StatusOK {
		w.WriteHeader(status)
	}
	if err := h.templates.Render(w, template, viewData); err != nil {
		h.logger.Error("render template", slog.String("template", template), slog.Any("error", err))
	}
}

func (h *Handler) redirectWithFlash(w http.ResponseWriter, r *http.Request, location, kind, message string) {
	if sess := shared.SessionFromContext(r.Context()); sess != nil {
		sess.AddFlash(shared.FlashMessage{Kind: kind, Message: message})
	}
	http.Redirect(w, r, location, http.StatusSeeOther)
}
