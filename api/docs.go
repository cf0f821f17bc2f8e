package api

// @title Logbook API
// @version v0.1.0
// @description API for the experiment logbook service.

// @contact.name API Support

// @license.name Apache 2.0
// @license.url http://www.apache.org/licenses/LICENSE-2.0.html

// @host localhost:4000
// @BasePath /api
// @schemes http
// @query.collection.format multi
