package main

// General API documentation for swaggo. Run `make swagger-gen` to regenerate
// docs for the proxy endpoints.
//
// @title           nimctl proxy API
// @version         1.0
// @description     Observability proxy in front of a local NIM inference server.
//
// @contact.name   nimctl maintainers
// @contact.url    https://github.com/your-org/nimctl
//
// @license.name   MIT
// @license.url    https://opensource.org/licenses/MIT
//
// @BasePath  /
//
// @schemes http
