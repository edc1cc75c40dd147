package webapi

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"forge-server-go/internal/domain/inventory"
	inventorymodel "forge-server-go/internal/domain/inventory/model"
	httptransport "forge-server-go/internal/transport/http"
)

type addMaterialRequest struct {
	Name      string  `json:"name" binding:"required"`
	Color     string  `json:"color" binding:"required"`
	UnitPrice float64 `json:"unit_price"`
	Remaining float64 `json:"remaining_quantity"`
	Kind      string  `json:"kind" binding:"required"`
	Viscosity float64 `json:"viscosity"`
	Grade     string  `json:"grade"`
	Diameter  float64 `json:"diameter"`
}

func (s *Service) handleMaterialAdd(c *gin.Context) {
	var req addMaterialRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httptransport.RespondError(c, http.StatusBadRequest, "invalid request body")
		return
	}

	kind, err := inventorymodel.ParseKind(req.Kind)
	if err != nil {
		httptransport.RespondDomainError(c, err)
		return
	}
	var material inventorymodel.Material
	switch kind {
	case inventorymodel.KindResin:
		material = inventorymodel.NewResin(req.Name, req.Color, req.UnitPrice, req.Remaining, req.Viscosity)
	case inventorymodel.KindFilament:
		material = inventorymodel.NewFilament(req.Name, req.Color, req.UnitPrice, req.Remaining, req.Grade, req.Diameter)
	}

	added, err := s.inventory.AddMaterial(c.Request.Context(), material)
	if err != nil {
		httptransport.RespondDomainError(c, err)
		return
	}
	httptransport.RespondSuccess(c, http.StatusCreated, added, "material added")
}

func (s *Service) handleMaterialsList(c *gin.Context) {
	materials, err := s.inventory.ListMaterials(c.Request.Context(), c.Query("type"))
	if err != nil {
		httptransport.RespondDomainError(c, err)
		return
	}
	httptransport.RespondSuccess(c, http.StatusOK, materials, "")
}

type searchMaterialsRequest struct {
	Name  string `json:"name"`
	Kind  string `json:"kind"`
	Color string `json:"color"`
}

func (s *Service) handleMaterialsSearch(c *gin.Context) {
	var req searchMaterialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httptransport.RespondError(c, http.StatusBadRequest, "invalid request body")
		return
	}
	materials, err := s.inventory.SearchMaterials(c.Request.Context(), inventory.MaterialFilter{
		Name:  req.Name,
		Kind:  req.Kind,
		Color: req.Color,
	})
	if err != nil {
		httptransport.RespondDomainError(c, err)
		return
	}
	httptransport.RespondSuccess(c, http.StatusOK, materials, "")
}

func (s *Service) handleMaterialDelete(c *gin.Context) {
	deleted, err := s.inventory.DeleteMaterialsByName(c.Request.Context(), c.Param("name"))
	if err != nil {
		httptransport.RespondDomainError(c, err)
		return
	}
	httptransport.RespondSuccess(c, http.StatusOK, gin.H{"deleted": deleted}, "material deleted")
}
