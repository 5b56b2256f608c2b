package handler

import (
	collabdomain "recipe-share-go/internal/domain/collab"
	cookingdomain "recipe-share-go/internal/domain/cooking"
	recipedomain "recipe-share-go/internal/domain/recipe"
	userdomain "recipe-share-go/internal/domain/user"
	"recipe-share-go/internal/storage"
	"recipe-share-go/pkg/logger"
)

type Handlers struct {
	Profiles *userdomain.Service
	Recipes  *recipedomain.Service
	Collabs  *collabdomain.Service
	Cooking  *cookingdomain.Manager

	media     storage.Store
	maxUpload int64
	log       logger.Logger
}

func New(
	profiles *userdomain.Service,
	recipes *recipedomain.Service,
	collabs *collabdomain.Service,
	cooking *cookingdomain.Manager,
	media storage.Store,
	maxUpload int64,
	log logger.Logger,
) *Handlers {
	return &Handlers{
		Profiles:  profiles,
		Recipes:   recipes,
		Collabs:   collabs,
		Cooking:   cooking,
		media:     media,
		maxUpload: maxUpload,
		log:       log,
	}
}
