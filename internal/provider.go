package internal

// ServiceProvider binds services into the application and configures them
// once everything is registered.
//
// Register must only bind factories and instances. Boot runs after every
// provider registered, so it may resolve services bound by others.
type ServiceProvider interface {
	Register(app *Application) error
	Boot(app *Application) error
}

// BaseProvider gives a provider no-op Register and Boot methods to embed.
type BaseProvider struct{}

func (BaseProvider) Register(*Application) error { return nil }

func (BaseProvider) Boot(*Application) error { return nil }

// DefaultProviders is the catalog app.providers entries are resolved from.
func DefaultProviders() map[string]func() ServiceProvider {
	return map[string]func() ServiceProvider{
		"events":     func() ServiceProvider { return &EventServiceProvider{} },
		"routing":    func() ServiceProvider { return &RoutingServiceProvider{} },
		"validation": func() ServiceProvider { return &ValidationServiceProvider{} },
		"hash":       func() ServiceProvider { return &HashServiceProvider{} },
		"view":       func() ServiceProvider { return &ViewServiceProvider{} },
		"mail":       func() ServiceProvider { return &MailServiceProvider{} },
		"auth":       func() ServiceProvider { return &AuthServiceProvider{} },
		"files":      func() ServiceProvider { return &FilesystemServiceProvider{} },
		"cache":      func() ServiceProvider { return &CacheServiceProvider{} },
		"database":   func() ServiceProvider { return &DatabaseServiceProvider{} },
		"queue":      func() ServiceProvider { return &QueueServiceProvider{} },
		"content":    func() ServiceProvider { return &ContentServiceProvider{} },
	}
}
