package webapi

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"forge-server-go/internal/domain/inventory"
	inventorymodel "forge-server-go/internal/domain/inventory/model"
	httptransport "forge-server-go/internal/transport/http"
)

type addPrinterRequest struct {
	Name               string   `json:"name" binding:"required"`
	Type               string   `json:"type" binding:"required"`
	Resolution         string   `json:"resolution"`
	MaxDimensions      string   `json:"max_dimensions"`
	Price              float64  `json:"price"`
	ResinTankCapacity  float64  `json:"resin_tank_capacity"`
	LightSource        string   `json:"light_source"`
	FilamentDiameter   float64  `json:"filament_diameter"`
	SupportedMaterials []string `json:"supported_materials"`
}

func (s *Service) handlePrinterAdd(c *gin.Context) {
	var req addPrinterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httptransport.RespondError(c, http.StatusBadRequest, "invalid request body")
		return
	}
	kind, err := inventorymodel.ParseKind(req.Type)
	if err != nil {
		httptransport.RespondDomainError(c, err)
		return
	}
	added, err := s.inventory.AddPrinter(c.Request.Context(), inventorymodel.Printer{
		Name:               req.Name,
		Type:               kind,
		Resolution:         req.Resolution,
		MaxDimensions:      req.MaxDimensions,
		Price:              req.Price,
		ResinTankCapacity:  req.ResinTankCapacity,
		LightSource:        req.LightSource,
		FilamentDiameter:   req.FilamentDiameter,
		SupportedMaterials: req.SupportedMaterials,
	})
	if err != nil {
		httptransport.RespondDomainError(c, err)
		return
	}
	httptransport.RespondSuccess(c, http.StatusCreated, added, "printer added")
}

func (s *Service) handlePrintersList(c *gin.Context) {
	printers, err := s.inventory.ListPrinters(c.Request.Context(), c.Query("type"))
	if err != nil {
		httptransport.RespondDomainError(c, err)
		return
	}
	httptransport.RespondSuccess(c, http.StatusOK, printers, "")
}

type searchPrintersRequest struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Resolution string `json:"resolution"`
}

func (s *Service) handlePrintersSearch(c *gin.Context) {
	var req searchPrintersRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httptransport.RespondError(c, http.StatusBadRequest, "invalid request body")
		return
	}
	printers, err := s.inventory.SearchPrinters(c.Request.Context(), inventory.PrinterFilter{
		ID:         req.ID,
		Name:       req.Name,
		Resolution: req.Resolution,
	})
	if err != nil {
		httptransport.RespondDomainError(c, err)
		return
	}
	httptransport.RespondSuccess(c, http.StatusOK, printers, "")
}

type updatePrinterRequest struct {
	Name               *string  `json:"name"`
	Resolution         *string  `json:"resolution"`
	MaxDimensions      *string  `json:"max_dimensions"`
	Price              *float64 `json:"price"`
	Status             *string  `json:"status"`
	ResinTankCapacity  *float64 `json:"resin_tank_capacity"`
	LightSource        *string  `json:"light_source"`
	FilamentDiameter   *float64 `json:"filament_diameter"`
	SupportedMaterials []string `json:"supported_materials"`
}

func (s *Service) handlePrinterUpdate(c *gin.Context) {
	var req updatePrinterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httptransport.RespondError(c, http.StatusBadRequest, "invalid request body")
		return
	}
	updated, err := s.inventory.UpdatePrinter(c.Request.Context(), c.Param("id"), inventory.PrinterUpdate{
		Name:               req.Name,
		Resolution:         req.Resolution,
		MaxDimensions:      req.MaxDimensions,
		Price:              req.Price,
		Status:             req.Status,
		ResinTankCapacity:  req.ResinTankCapacity,
		LightSource:        req.LightSource,
		FilamentDiameter:   req.FilamentDiameter,
		SupportedMaterials: req.SupportedMaterials,
	})
	if err != nil {
		httptransport.RespondDomainError(c, err)
		return
	}
	httptransport.RespondSuccess(c, http.StatusOK, updated, "printer updated")
}

func (s *Service) handlePrinterDelete(c *gin.Context) {
	if err := s.inventory.DeletePrinter(c.Request.Context(), c.Param("id")); err != nil {
		httptransport.RespondDomainError(c, err)
		return
	}
	httptransport.RespondSuccess(c, http.StatusOK, nil, "printer deleted")
}

type assignMaterialRequest struct {
	MaterialID string `json:"material_id" binding:"required"`
}

func (s *Service) handlePrinterAssignMaterial(c *gin.Context) {
	var req assignMaterialRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httptransport.RespondError(c, http.StatusBadRequest, "invalid request body")
		return
	}
	printer, err := s.inventory.AssignMaterial(c.Request.Context(), c.Param("id"), req.MaterialID)
	if err != nil {
		httptransport.RespondDomainError(c, err)
		return
	}
	httptransport.RespondSuccess(c, http.StatusOK, printer, "material assigned")
}

type filamentChangeRequest struct {
	Color    string  `json:"color" binding:"required"`
	Quantity float64 `json:"quantity" binding:"required"`
}

func (s *Service) handleFilamentChange(c *gin.Context) {
	var req filamentChangeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httptransport.RespondError(c, http.StatusBadRequest, "invalid request body")
		return
	}
	result, err := s.inventory.ChangeFilament(c.Request.Context(), c.Param("id"), req.Color, req.Quantity)
	if err != nil {
		httptransport.RespondDomainError(c, err)
		return
	}
	message := "filament already loaded"
	if result.Changed {
		message = "filament changed"
	}
	httptransport.RespondSuccess(c, http.StatusOK, result, message)
}
