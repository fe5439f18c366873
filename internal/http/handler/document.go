package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"cdox/internal/filter"
	"cdox/internal/model"
	"cdox/internal/repository"
	"cdox/internal/service"
	"cdox/internal/view"
)

// Options carries presentation settings shared by the document handlers.
type Options struct {
	DateLayout string
}

// DocumentListResponse is the body of the listing endpoints.
type DocumentListResponse struct {
	Data  []view.DocumentView `json:"data"`
	Total int                 `json:"total"`
}

// YearListResponse is the body of GET /documents/years.
type YearListResponse struct {
	Data []view.YearView `json:"data"`
}

// TypeListResponse is the body of GET /documents/types.
type TypeListResponse struct {
	Data []view.TypeView `json:"data"`
}

// FilterFormResponse is the body of GET /documents/filter-form.
type FilterFormResponse struct {
	Types        []view.TypeView     `json:"types"`
	Years        []view.YearView     `json:"years"`
	SelectedYear *int                `json:"selected_year"`
	ShowDate     bool                `json:"show_date"`
	Documents    []view.DocumentView `json:"documents"`
}

// ListDocuments godoc
// @Summary List published documents
// @Tags documents
// @Produce json
// @Param type query string false "comma separated type slugs"
// @Param year query string false "publication year or cdox-all-years"
// @Param order query string false "ASC or DESC"
// @Param show_date query string false "render the publication date"
// @Success 200 {object} DocumentListResponse
// @Router /documents [get]
func ListDocuments(docSvc service.DocumentService, opts Options) fiber.Handler {
	return func(c *fiber.Ctx) error {
		req := filter.Parse(filter.FromQuery(queryGetter(c)))
		return listDocuments(c, docSvc, req, opts)
	}
}

// FilterDocuments godoc
// @Summary Filter documents with the form fields of the public filter form
// @Tags documents
// @Accept x-www-form-urlencoded
// @Produce json
// @Param cdoxfilterdoctypes formData string false "type slug or cdox-all-doctypes"
// @Param cdoxfilter-all-doctypes formData string false "type restriction for cdox-all-doctypes"
// @Param cdoxfilteryear formData string false "year or cdox-all-years"
// @Param dateorder formData string false "ASC or DESC"
// @Param showpubdate formData string false "render the publication date"
// @Success 200 {object} DocumentListResponse
// @Router /documents/filter [post]
func FilterDocuments(docSvc service.DocumentService, opts Options) fiber.Handler {
	return func(c *fiber.Ctx) error {
		req := filter.Parse(filter.FromForm(func(key string) string { return c.FormValue(key) }))
		return listDocuments(c, docSvc, req, opts)
	}
}

func listDocuments(c *fiber.Ctx, docSvc service.DocumentService, req filter.Request, opts Options) error {
	docs, err := docSvc.GetFilteredDocuments(c.UserContext(), req.Spec)
	if err != nil {
		return writeInternal(c)
	}
	views := view.BuildList(docs, view.Options{ShowDate: req.ShowDate, DateLayout: opts.DateLayout})
	return c.JSON(DocumentListResponse{Data: views, Total: len(views)})
}

// ListYears godoc
// @Summary Publication years with document counts
// @Tags documents
// @Produce json
// @Param order query string false "ASC or DESC"
// @Success 200 {object} YearListResponse
// @Router /documents/years [get]
func ListYears(docSvc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		order := model.NormalizeOrder(c.Query(filter.QueryOrder), model.OrderDesc)
		years, err := docSvc.GetDocumentYears(c.UserContext(), order)
		if err != nil {
			return writeInternal(c)
		}
		return c.JSON(YearListResponse{Data: view.BuildYears(years)})
	}
}

// ListTypes godoc
// @Summary Document types with usage counts
// @Tags documents
// @Produce json
// @Param hide_empty query string false "drop types without published documents"
// @Param orderby query string false "name, slug or count"
// @Param order query string false "ASC or DESC"
// @Param type query string false "comma separated slugs to restrict to"
// @Success 200 {object} TypeListResponse
// @Failure 400 {object} errorPayload
// @Router /documents/types [get]
func ListTypes(docSvc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		orderBy := repository.TypeOrderBy(c.Query("orderby", string(repository.TypeOrderByName)))
		switch orderBy {
		case repository.TypeOrderByName, repository.TypeOrderBySlug, repository.TypeOrderByCount:
		default:
			return writeError(c, fiber.StatusBadRequest, CodeInvalidOrderBy, "orderby must be name, slug or count")
		}

		q := repository.TypeQuery{
			HideEmpty: filter.ParseBool(c.Query("hide_empty")),
			OrderBy:   orderBy,
			Order:     model.NormalizeOrder(c.Query(filter.QueryOrder), model.OrderAsc),
			Slugs:     filter.ParseTypeList(c.Query(filter.QueryType)),
		}
		types, err := docSvc.GetDocumentTypes(c.UserContext(), q)
		if err != nil {
			return writeInternal(c)
		}
		return c.JSON(TypeListResponse{Data: view.BuildTypes(types)})
	}
}

// FilterForm godoc
// @Summary Data for the first render of a filter form
// @Tags documents
// @Produce json
// @Param type query string false "comma separated slugs offered by the form"
// @Param initial_current_year query string false "preselect the current year"
// @Param show_date query string false "render publication dates (default true)"
// @Success 200 {object} FilterFormResponse
// @Router /documents/filter-form [get]
func FilterForm(docSvc service.DocumentService, opts Options) fiber.Handler {
	return func(c *fiber.Ctx) error {
		showDate := filter.ParseBoolDefault(c.Query(filter.QueryShowDate), true)
		form, err := docSvc.GetFilterForm(c.UserContext(), service.FormOptions{
			Types:              filter.ParseTypeList(c.Query(filter.QueryType)),
			InitialCurrentYear: filter.ParseBool(c.Query("initial_current_year")),
		})
		if err != nil {
			return writeInternal(c)
		}
		return c.JSON(FilterFormResponse{
			Types:        view.BuildTypes(form.Types),
			Years:        view.BuildYears(form.Years),
			SelectedYear: form.SelectedYear,
			ShowDate:     showDate,
			Documents:    view.BuildList(form.Documents, view.Options{ShowDate: showDate, DateLayout: opts.DateLayout}),
		})
	}
}

// GetDocument godoc
// @Summary Get a document by ID
// @Tags documents
// @Produce json
// @Param id path string true "document UUID"
// @Success 200 {object} view.DocumentView
// @Failure 400 {object} errorPayload
// @Failure 404 {object} errorPayload
// @Router /documents/{id} [get]
func GetDocument(docSvc service.DocumentService, opts Options) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := documentID(c)
		if !ok {
			return writeError(c, fiber.StatusBadRequest, CodeInvalidID, "invalid id format")
		}
		doc, err := docSvc.GetDocument(c.UserContext(), id)
		if err != nil {
			return writeDocumentError(c, err)
		}
		return c.JSON(view.Build(doc, view.Options{ShowDate: true, DateLayout: opts.DateLayout}))
	}
}

// RecordDownload godoc
// @Summary Count one download of a document
// @Tags documents
// @Param id path string true "document UUID"
// @Success 204
// @Failure 400 {object} errorPayload
// @Failure 404 {object} errorPayload
// @Router /documents/{id}/downloads [post]
func RecordDownload(docSvc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := documentID(c)
		if !ok {
			return writeError(c, fiber.StatusBadRequest, CodeInvalidID, "invalid id format")
		}
		if err := docSvc.IncrementDownloadCount(c.UserContext(), id); err != nil {
			return writeDocumentError(c, err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}

// documentID returns the canonical form of the :id parameter.
func documentID(c *fiber.Ctx) (string, bool) {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return "", false
	}
	return id.String(), true
}

func queryGetter(c *fiber.Ctx) func(string) string {
	return func(key string) string { return c.Query(key) }
}
