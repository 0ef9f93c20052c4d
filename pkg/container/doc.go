// Package container is a small registry of named factories.
//
// Bindings are transient (Bind), shared (Singleton) or pre-built (Instance).
// Factories resolve their own dependencies through the Resolver they are
// given, which detects cycles. The generic helpers key bindings by type so
// callers get typed values without string lookups:
//
//	c := container.New()
//	container.Provide(c, func(r container.Resolver) (*mail.Mailer, error) {
//	    d, err := container.Make[*events.Dispatcher](r)
//	    if err != nil {
//	        return nil, err
//	    }
//	    return mail.NewMailer(d), nil
//	})
//	m := container.MustMake[*mail.Mailer](c)
//
// There is no reflection-based autowiring: everything resolvable was
// registered explicitly.
package container
