package importcsv

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/MrJamesThe3rd/clerk/internal/catalog"
	"github.com/MrJamesThe3rd/clerk/internal/catalog/importer"
	"github.com/MrJamesThe3rd/clerk/internal/http/respond"
)

const maxUploadSize = 10 << 20

type Handler struct {
	parser  *importer.Parser
	catalog *catalog.Service
	log     *zap.Logger
}

func NewHandler(parser *importer.Parser, catalogSvc *catalog.Service, log *zap.Logger) *Handler {
	return &Handler{
		parser:  parser,
		catalog: catalogSvc,
		log:     log,
	}
}

func (h *Handler) Routes(r chi.Router) {
	r.Post("/", h.importCSV)
	r.Post("/confirm", h.confirmImport)
}

type importSuccessResponse struct {
	Imported int                `json:"imported"`
	Products []*catalog.Product `json:"products"`
}

type confirmRequest struct {
	Products []*catalog.Product `json:"products"`
}

// importCSV parses the uploaded file. Rows whose SKU is already in the
// catalog are sent back as conflicts unless overwrite=true; nothing is
// written in that case and the client resubmits through /confirm.
func (h *Handler) importCSV(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		respond.BadRequest(w, h.log, "failed to parse form: "+err.Error())
		return
	}

	file, _, err := r.FormFile("file")
	if err != nil {
		respond.BadRequest(w, h.log, "file field is required")
		return
	}
	defer file.Close()

	products, err := h.parser.Parse(file)
	if err != nil {
		respond.BadRequest(w, h.log, err.Error())
		return
	}

	if r.FormValue("overwrite") != "true" {
		plan, err := h.catalog.Plan(r.Context(), products)
		if err != nil {
			respond.Error(w, h.log, err)
			return
		}

		if len(plan.Conflicts) > 0 {
			respond.JSON(w, h.log, http.StatusConflict, plan)
			return
		}
	}

	h.store(w, r, products)
}

func (h *Handler) confirmImport(w http.ResponseWriter, r *http.Request) {
	var req confirmRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.BadRequest(w, h.log, "invalid request body: "+err.Error())
		return
	}

	h.store(w, r, req.Products)
}

func (h *Handler) store(w http.ResponseWriter, r *http.Request, products []*catalog.Product) {
	if err := h.catalog.Import(r.Context(), products); err != nil {
		respond.Error(w, h.log, err)
		return
	}

	h.log.Info("imported products", zap.Int("count", len(products)))

	if products == nil {
		products = []*catalog.Product{}
	}

	respond.JSON(w, h.log, http.StatusCreated, importSuccessResponse{
		Imported: len(products),
		Products: products,
	})
}
