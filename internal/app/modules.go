package app

import (
	"github.com/vk/hookhost/internal/handlers"
	"github.com/vk/hookhost/modules/echo"
	"github.com/vk/hookhost/modules/fetch"
	"github.com/vk/hookhost/modules/ping"
	"github.com/vk/hookhost/modules/welcome"
)

// coreModules is the definitive list of all handler modules compiled into
// the hookhost binary.
var coreModules = []handlers.Module{
	&echo.Module{},
	&fetch.Module{},
	&ping.Module{},
	&welcome.Module{},
}
