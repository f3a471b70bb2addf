/*Package spektralwerk is a client for the Spektralwerk Core NIR spectrometer,
spoken to over its SCPI line protocol on a raw TCP socket or a serial line.

Usage


	cfg, err := spektralwerk.NewConfig("192.168.1.20", spektralwerk.DefaultPort)
	...
	err = spektralwerk.WithSession(ctx, cfg, func(c *spektralwerk.Client) error {
		if err := c.SetAverageNumber(8); err != nil {
			return err
		}
		for sp, err := range c.Stream(spektralwerk.StreamAveraged()).All() {
			...
		}
	})

Every call is one command and one reply. The event status register is read
back with each command, so a setting the instrument refuses is reported as a
StatusError right away; DrainErrorQueue then tells why.

Errors


Errors fall into five kinds, told apart with errors.Is: ErrEncode (nothing
was sent), ErrTransport (the connection broke), ErrTimeout (no reply in time),
ErrDecode (the reply did not parse) and ErrInstrument (the instrument refused
the command or reported an error). The concrete types carry the details and
are reached with errors.As.

A timeout leaves the line in an unknown state. The client does not reconnect;
it drops whatever the instrument still sends before the next command.
*/
package spektralwerk
