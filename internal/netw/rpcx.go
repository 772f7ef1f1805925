package netw

import (
	"context"

	rpcx_client "github.com/smallnest/rpcx/client"
	"github.com/smallnest/rpcx/log"
	"github.com/smallnest/rpcx/protocol"
	"github.com/smallnest/rpcx/share"

	"github.com/gofastkv/shardstore/internal/netw/codec"
)

// msgpSerializeType is an rpcx SerializeType id not used by any of
// rpcx's built-in codecs, reserved here for the hand-written msgp codec.
const msgpSerializeType = protocol.SerializeType(5)

func init() {
	log.SetDummyLogger()
	share.Codecs[msgpSerializeType] = &codec.MsgpCodec{}
}

// ClientEnd is one outbound connection to a replication follower. This
// repo only ever dials out to followers; it never accepts one (spec.md
// §1 treats replication transport as an external collaborator), so there
// is no listener side here.
type ClientEnd struct {
	Name string
	Addr string

	client rpcx_client.XClient
}

func MakeRPCEnd(name, addr string) *ClientEnd {
	ce := &ClientEnd{Name: name, Addr: addr}
	d, err := rpcx_client.NewPeer2PeerDiscovery("tcp@"+addr, "")
	if err != nil {
		return nil
	}
	option := rpcx_client.DefaultOption
	option.SerializeType = msgpSerializeType
	ce.client = rpcx_client.NewXClient(name, rpcx_client.Failfast, rpcx_client.RoundRobin, d, option)
	return ce
}

func (ce *ClientEnd) Call(svrName string, args interface{}, reply interface{}) bool {
	err := ce.client.Call(context.Background(), svrName, args, reply)
	return err == nil
}

func (ce *ClientEnd) Close() {
	if ce.client != nil {
		ce.client.Close()
	}
}
