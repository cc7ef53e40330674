// Package config loads form definitions for the formstate host.
//
// A definition lives in formstate.yaml:
//
//	name: signup
//	fields:
//	  - key: user.email
//	    rules: required,email
//	  - key: user.password
//	    rules: required,minlen=8
//	  - key: user.confirm
//	    rules: eqfield=user.password
//	  - key: user.phone
//	    rules: phone
//	  - key: plan
//	    initial: free
//	    rules: oneof=free|pro
//	validators:
//	  - key: contact
//	    kind: any_required
//	    fields: [user.email, user.phone]
//	server:
//	  addr: ":8080"
//	  async_rate: 20
//
// FORMSTATE_ADDR overrides server.addr.
//
// # Usage
//
//	cfg, err := config.Load(".")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	f, err := cfg.Build(form.WithLogger(logger))
package config
