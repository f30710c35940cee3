/*
Package handlers defines the spec handler contract and its registry.

A handler turns the stored kwargs of one datum into a usable value. Which
handler runs is decided by the spec string recorded on the datum's
resource, so the store itself stays payload-agnostic.

Registering and using handlers:

	reg := handlers.NewRegistry()
	reg.MustRegister("AD_HDF5", handlers.HandlerFunc(
	    func(kwargs map[string]any) (any, error) {
	        return openFrame(kwargs["resource_path"], kwargs["point"])
	    },
	))

	h, err := reg.Get("AD_HDF5")
	if err != nil {
	    // errors.IsUnknownSpec(err) == true for unregistered specs
	}

The kwargs passed to Materialize are the union of the resource's
resource_kwargs and one datum's row; on key collision the row wins.

Handlers that know which files their datums live in can additionally
implement FileLister; the store uses it to answer file listing queries
without opening payloads.
*/
package handlers
