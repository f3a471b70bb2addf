/*Package transport is the byte-stream layer underneath the spectrometer client.
It returns one of a few structures that are agnostic to what the actual IO
transport is: a network socket and a serial port both read & write bytes, can
be closed, occasionally screw up and need to be re-opened.

Implemented


The following URI schemas are implemented:
  tcp://<host[:port]> - Outgoing Sockets of type tcp (either v4 or v6)
  tcp4://<host[:port]> - Outgoing Sockets of type tcp v4
  tcp6://<host[:port]> - Outgoing Sockets of type tcp v6
  udp://<host[:port]> - Outgoing Sockets of type udp (either v4 or v6)
  udp4://<host[:port]> - Outgoing Sockets of type udp v4
  udp6://<host[:port]> - Outgoing Sockets of type udp v6
  serial://<device>[:baud] - Serial connection, 8N1
  rs232://<device>[:baud] - Serial connection, 8N1

The port defaults to 5025, the SCPI raw socket, and the baud rate to 115200.
ParseLink turns a dial string into a Link for inspection or tweaking (the read
poll interval, say) before handing it to Connect.

On top of an IDoIO, the Arbiter provides the Session primitives a line
protocol needs: serialized writes and a blocking read-until-terminator with a
per-call timeout.

Error Handling


Neither an IDoIO nor an Arbiter will try to maintain a constant connection.
When the connection dies / is killed / fails the errors are passed to the
caller who should have a better idea of what to do.
*/
package transport
