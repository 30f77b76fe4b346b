package contracts

import (
	"github.com/julienschmidt/httprouter"
)

// Handler is implemented by every HTTP feature package so the application
// can mount them uniformly.
type Handler interface {
	RegisterRoutes(router *httprouter.Router)
}
