// Command binlog is a thin driver over the client library, useful for
// manually inspecting a server's or a dumped directory's binlog stream.
package main

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/relaygrove/binlog"
)

type binLog interface {
	NextEvent() (binlog.Event, error)
	NextRow() ([]interface{}, []interface{}, error)
}

// binlog view tcp:localhost:3306,ssl,user=root,passwd=password binlog.000002:4
// binlog view dir:/path/to/dump binlog.000002
// binlog dump tcp:localhost:3306,ssl,user=root,passwd=password /path/to/dump binlog.000001
func main() {
	switch os.Args[1] {
	case "view":
		address := os.Args[2]
		colon := strings.IndexByte(address, ':')
		network, address := address[:colon], address[colon+1:]
		var bl binLog
		if network == "dir" {
			bl = openLocal(address, os.Args[3])
		} else {
			bl = openRemote(network, address, os.Args[3])
		}
		if err := view(bl); err != nil {
			panic(err)
		}
	case "dump":
		address := os.Args[2]
		colon := strings.IndexByte(address, ':')
		network, address := address[:colon], address[colon+1:]
		bl := openRemote(network, address, os.Args[4])
		if err := bl.Dump(os.Args[3]); err != nil {
			panic(err)
		}
	}
}

func openRemote(network, address, location string) *binlog.Remote {
	tok := strings.Split(address, ",")
	bl, err := binlog.Dial(network, tok[0])
	if err != nil {
		panic(err)
	}
	if bl.IsSSLSupported() {
		for _, t := range tok[1:] {
			if t == "ssl" {
				if err := bl.UpgradeSSL(nil); err != nil {
					panic(err)
				}
				break
			}
		}
	}
	var user, passwd string
	for _, t := range tok[1:] {
		if strings.HasPrefix(t, "user=") {
			user = strings.TrimPrefix(t, "user=")
		}
		if strings.HasPrefix(t, "passwd=") {
			passwd = strings.TrimPrefix(t, "passwd=")
		}
	}
	if err := bl.Authenticate(user, passwd); err != nil {
		panic(err)
	}

	files, err := bl.ListFiles()
	if err != nil {
		panic(err)
	}
	fmt.Println("files:", files)

	file, pos, err := bl.MasterStatus()
	if err != nil {
		panic(err)
	}
	fmt.Printf("master status: %s:%d\n", file, pos)

	if err := bl.SetHeartbeatPeriod(5 * time.Second); err != nil {
		panic(err)
	}
	file, pos = getLocation(location)
	fmt.Println("file", file, pos)
	if err := bl.Seek(10, file, pos); err != nil {
		panic(err)
	}
	return bl
}

func openLocal(address, file string) *binlog.Local {
	bl, err := binlog.Open(address)
	if err != nil {
		panic(err)
	}

	files, err := bl.ListFiles()
	if err != nil {
		panic(err)
	}
	fmt.Println("files:", files)

	if err := bl.Seek(file); err != nil {
		panic(err)
	}

	return bl
}

func view(bl binLog) error {
	for {
		fmt.Println("-------------------------")
		e, err := bl.NextEvent()
		if err != nil {
			if err == io.EOF {
				return nil
			}
			panic(err)
		}
		fmt.Printf("%#v\n%#v\n", e.Header, e.Data)
		if _, ok := e.Data.(binlog.RowsEvent); ok {
			for {
				row, rowBeforeUpdate, err := bl.NextRow()
				if err != nil {
					if err == io.EOF {
						break
					}
					panic(err)
				}
				fmt.Println("        ", row, rowBeforeUpdate)
			}
		}
	}
}

func getLocation(arg string) (file string, pos uint32) {
	colon := strings.IndexByte(arg, ':')
	if colon == -1 {
		return arg, 4
	}
	file = arg[:colon]
	off, err := strconv.Atoi(arg[colon+1:])
	if err != nil {
		panic(err)
	}
	return file, uint32(off)
}
