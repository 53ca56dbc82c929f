/*
Package greenscreen speaks the block-mode terminal protocol from both ends.

As a host it simulates a mainframe application: screens are painted from a
declarative catalog and navigation rules decide which screen follows each
submission. As a client it drives such an application through scripted
workflows that fill fields, press keys, scrape values and assert on what the
host shows.

# Concept

Both sides share the same building blocks:

  - pkg/ebcdic: the single-byte character codec
  - pkg/datastream: the wire records (screen writes and client input)
  - pkg/telnet: option negotiation and record framing
  - pkg/screen: the 24×80 buffer and screen identification
  - pkg/catalog: loading screens, navigation rules and workflows from YAML

The host engine lives in pkg/host and the workflow engine in pkg/client.
This package wires them together for the common cases.

# Usage

Run a simulator:

	srv, err := greenscreen.NewHost("screens/", "navigation.yaml")
	if err != nil {
		log.Fatal(err)
	}
	log.Fatal(srv.ListenAndServe(ctx, ":3270"))

Run a workflow against it:

	res, err := greenscreen.RunWorkflow(ctx, "screens/", "loan-balance.yaml",
		map[string]string{"host": "localhost", "user": "ALICE", "password": "SECRET1"})
	if err != nil {
		log.Fatal(err) // configuration problem; nothing was sent
	}
	if !res.Success {
		log.Printf("step %s failed: %s (%s)", res.FailedStep, res.Message, res.Code)
	}
	fmt.Println(res.Data["borrower_name"])
*/
package greenscreen
