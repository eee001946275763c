package dto

import "github.com/fekuna/prun-market-service/internal/model"

type ListingFilters struct {
	ViewerID        string
	ChannelID       string
	CommodityTicker string
	LocationID      string
	OwnerID         string
	OrderType       model.OrderType // Empty uses the viewer's listing_visibility setting
	Query           string          // Free text, served by the search index when configured
	OnlyAvailable   bool            // Drop listings with nothing remaining
	Page            int
	PageSize        int
}
