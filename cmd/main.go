package main

import (
	"github.com/ordermanager/oms/internal/app"
	"github.com/ordermanager/oms/internal/config"
)

func main() {
	config.MustInit()
	app.MustNewApp().Run()
}
