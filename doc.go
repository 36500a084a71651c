// Package ibmesh 提供基于连接管理器的 fabric 传输端点
//
// 面向 InfiniBand 一类由连接管理器中介的网络：消息作为服务请求的
// 私有数据搭载传输，每个在途请求占用接口上的一个受限槽位，槽位满
// 时通过准入控制队列排队，完成事件按 FIFO 驱动排空。
//
// 基本用法:
//
//	domain, err := ibmesh.Open(ctx)
//	if err != nil {
//	    return err
//	}
//	defer domain.Close()
//
//	ep, err := domain.NewEndpoint(destAddr, destService)
//	if err != nil {
//	    return err
//	}
//
//	n, err := ep.Send(amID, func(buf []byte) int {
//	    return copy(buf, payload)
//	})
//
// Send 返回 ErrNoResource 时可通过 ep.PendingAdd 排队等待槽位释放，
// 通过 ep.Flush 判断本端点所在接口是否已排空。
package ibmesh
