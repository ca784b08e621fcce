package docs

// @title           Caregiver & Location Service API
// @version         1.0
// @description     Caregiver service handles caregiver availability, location fixes and proximity matching. Supports streaming location updates over WebSocket and an in-app notification inbox.
// @termsOfService  http://swagger.io/terms/

// @contact.name   API Support
// @contact.url    http://www.swagger.io/support
// @contact.email  support@swagger.io

// @license.name  Apache 2.0
// @license.url   http://www.apache.org/licenses/LICENSE-2.0.html

// @host      localhost:3001
// @BasePath  /

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.
