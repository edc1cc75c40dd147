package webapi

import (
	"net/http"

	"github.com/gin-gonic/gin"

	inventorymodel "forge-server-go/internal/domain/inventory/model"
	"forge-server-go/internal/domain/orders"
	ordersmodel "forge-server-go/internal/domain/orders/model"
	httptransport "forge-server-go/internal/transport/http"
)

type addOrderRequest struct {
	ObjectName   string  `json:"object_name" binding:"required"`
	WeightGrams  float64 `json:"weight_grams" binding:"required"`
	Dimensions   string  `json:"dimensions"`
	Color        string  `json:"color" binding:"required"`
	Address      string  `json:"address" binding:"required"`
	MaterialType string  `json:"material_type" binding:"required"`
}

func (s *Service) handleOrderAdd(c *gin.Context) {
	var req addOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httptransport.RespondError(c, http.StatusBadRequest, "invalid request body")
		return
	}
	added, err := s.orders.Add(c.Request.Context(), ordersmodel.Order{
		ObjectName:   req.ObjectName,
		WeightGrams:  req.WeightGrams,
		Dimensions:   req.Dimensions,
		Color:        req.Color,
		Address:      req.Address,
		MaterialType: inventorymodel.Kind(req.MaterialType),
	})
	if err != nil {
		httptransport.RespondDomainError(c, err)
		return
	}
	httptransport.RespondSuccess(c, http.StatusCreated, added, "order added")
}

func (s *Service) handleOrdersList(c *gin.Context) {
	all, err := s.orders.List(c.Request.Context())
	if err != nil {
		httptransport.RespondDomainError(c, err)
		return
	}
	httptransport.RespondSuccess(c, http.StatusOK, all, "")
}

type searchOrdersRequest struct {
	ObjectName   string `json:"object_name"`
	Color        string `json:"color"`
	MaterialType string `json:"material_type"`
}

func (s *Service) handleOrdersSearch(c *gin.Context) {
	var req searchOrdersRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httptransport.RespondError(c, http.StatusBadRequest, "invalid request body")
		return
	}
	matches, err := s.orders.Search(c.Request.Context(), orders.Filter{
		ObjectName:   req.ObjectName,
		Color:        req.Color,
		MaterialType: req.MaterialType,
	})
	if err != nil {
		httptransport.RespondDomainError(c, err)
		return
	}
	httptransport.RespondSuccess(c, http.StatusOK, matches, "")
}

type updateAddressRequest struct {
	Address string `json:"address" binding:"required"`
}

func (s *Service) handleOrderUpdateAddress(c *gin.Context) {
	var req updateAddressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httptransport.RespondError(c, http.StatusBadRequest, "invalid request body")
		return
	}
	updated, err := s.orders.UpdateAddress(c.Request.Context(), c.Param("id"), req.Address)
	if err != nil {
		httptransport.RespondDomainError(c, err)
		return
	}
	httptransport.RespondSuccess(c, http.StatusOK, updated, "address updated")
}

func (s *Service) handleOrderDelete(c *gin.Context) {
	if err := s.orders.Delete(c.Request.Context(), c.Param("id")); err != nil {
		httptransport.RespondDomainError(c, err)
		return
	}
	httptransport.RespondSuccess(c, http.StatusOK, nil, "order deleted")
}

func (s *Service) handleOrderComputeCost(c *gin.Context) {
	priced, err := s.orders.ComputeCost(c.Request.Context(), c.Param("id"))
	if err != nil {
		httptransport.RespondDomainError(c, err)
		return
	}
	httptransport.RespondSuccess(c, http.StatusOK, priced, "cost computed")
}
